//go:build !linux

package probe

import goruntime "runtime"

// CurrentPlatform returns the platform of the running host.
func CurrentPlatform() Platform {
	return Unsupported(goruntime.GOOS)
}
