package inspector

import (
	"github.com/distribution/reference"
)

// splitReference returns the familiar repository name and tag of ref,
// e.g. "library/alpine" -> ("alpine", "latest"). ok is false for strings
// that are not image references, such as image IDs.
func splitReference(ref string) (name, tag string, ok bool) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", "", false
	}
	named = reference.TagNameOnly(named)

	name = reference.FamiliarName(named)
	if tagged, isTagged := named.(reference.Tagged); isTagged {
		tag = tagged.Tag()
	}
	return name, tag, true
}

// sameImage reports whether two references name the same repository and tag.
func sameImage(a, b string) bool {
	an, at, ok := splitReference(a)
	if !ok {
		return false
	}
	bn, bt, ok := splitReference(b)
	return ok && an == bn && at == bt
}
