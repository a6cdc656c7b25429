//go:build linux

package probe

// CurrentPlatform returns the platform of the running host.
func CurrentPlatform() Platform {
	return Linux()
}
