//go:build !unix

package escalate

// PathOwner is not resolvable on this platform.
func PathOwner(path string) (string, bool) {
	return "", false
}

// IsRoot is always false on this platform.
func IsRoot() bool {
	return false
}
