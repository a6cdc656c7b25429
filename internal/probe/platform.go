package probe

// Platform is the set of detectors a host operating system supports.
type Platform interface {
	// Name returns the GOOS value the platform serves.
	Name() string

	// Detectors returns the runtime detectors in default-priority order.
	Detectors() []Detector
}

// linuxPlatform reads runtime storage straight from the host file system.
type linuxPlatform struct{}

func (linuxPlatform) Name() string { return "linux" }

func (linuxPlatform) Detectors() []Detector {
	return []Detector{DockerDetector, PodmanDetector, ContainerdDetector}
}

// unsupportedPlatform covers hosts where runtimes keep their storage inside
// a VM (Docker Desktop on macOS and Windows), so direct access cannot work.
// Probing it yields an empty result.
type unsupportedPlatform struct {
	goos string
}

func (p unsupportedPlatform) Name() string { return p.goos }

func (unsupportedPlatform) Detectors() []Detector { return nil }

// Linux returns the Linux platform.
func Linux() Platform { return linuxPlatform{} }

// Unsupported returns a platform that detects nothing.
func Unsupported(goos string) Platform { return unsupportedPlatform{goos: goos} }
