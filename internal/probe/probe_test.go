package probe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/containerd/errdefs"

	"github.com/fudanglp/docker-layers/internal/system"
)

type testHost struct {
	*Host
	fs   *system.MockFS
	exec *system.MockExecutor
	env  system.MapEnv
}

func newTestHost() *testHost {
	fsys := system.NewMockFS()
	exec := system.NewMockExecutor()
	env := system.MapEnv{"PATH": "/usr/local/bin:/usr/bin", "HOME": "/home/user"}
	return &testHost{
		Host: &Host{Exec: exec, FS: fsys, Env: env},
		fs:   fsys,
		exec: exec,
		env:  env,
	}
}

func (h *testHost) install(names ...string) {
	for _, name := range names {
		h.fs.AddFile("/usr/bin/"+name, 0755)
	}
}

func (h *testHost) prober() *Prober {
	return &Prober{Host: h.Host, Paths: DefaultPaths(), Platform: Linux()}
}

func kinds(r Result) []RuntimeKind {
	var out []RuntimeKind
	for _, rt := range r.Runtimes {
		out = append(out, rt.Kind)
	}
	return out
}

func TestProbe_NoRuntimes(t *testing.T) {
	h := newTestHost()

	result := h.prober().Probe(context.Background())

	if result.Runtimes == nil || len(result.Runtimes) != 0 {
		t.Errorf("Runtimes = %#v, want empty non-nil slice", result.Runtimes)
	}
	if result.Default != nil {
		t.Errorf("Default = %d, want nil", *result.Default)
	}
	if _, ok := result.DefaultRuntime(); ok {
		t.Error("DefaultRuntime should report false")
	}
}

func TestProbe_UnsupportedPlatform(t *testing.T) {
	for _, goos := range []string{"darwin", "windows"} {
		t.Run(goos, func(t *testing.T) {
			h := newTestHost()
			h.install("docker", "podman", "ctr")
			p := h.prober()
			p.Platform = Unsupported(goos)

			result := p.Probe(context.Background())

			if len(result.Runtimes) != 0 || result.Default != nil {
				t.Errorf("Probe on %s = %+v, want empty result", goos, result)
			}
			if len(h.exec.Commands) != 0 {
				t.Errorf("unsupported platform ran commands: %v", h.exec.Commands)
			}
			if p.Platform.Name() != goos {
				t.Errorf("Name() = %q, want %q", p.Platform.Name(), goos)
			}
		})
	}
}

func TestProbe_DetectionOrder(t *testing.T) {
	h := newTestHost()
	// Installed in reverse to show that order comes from detection priority.
	h.install("ctr", "podman", "docker")

	result := h.prober().Probe(context.Background())

	got := kinds(result)
	want := []RuntimeKind{KindDocker, KindPodman, KindContainerd}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if result.Default == nil || *result.Default != 0 {
		t.Errorf("Default = %v, want 0", result.Default)
	}
}

func TestProbe_PodmanDefaultWithoutDocker(t *testing.T) {
	h := newTestHost()
	h.install("podman", "ctr")

	result := h.prober().Probe(context.Background())

	rt, ok := result.DefaultRuntime()
	if !ok {
		t.Fatal("expected a default runtime")
	}
	if rt.Kind != KindPodman {
		t.Errorf("default kind = %v, want Podman", rt.Kind)
	}
	if len(result.Runtimes) != 2 {
		t.Errorf("detected %d runtimes, want 2", len(result.Runtimes))
	}
}

func TestDetectDocker_Running(t *testing.T) {
	h := newTestHost()
	h.install("docker")
	h.exec.AddResponse("docker info", nil, nil)
	h.exec.AddResponse("docker info --format {{.Driver}}", []byte("overlay\n"), nil)
	h.fs.AddDir("/var/lib/docker")

	info, ok := detectDocker(context.Background(), h.Host, DefaultPaths())
	if !ok {
		t.Fatal("docker should be detected")
	}

	want := RuntimeInfo{
		Kind:          KindDocker,
		BinaryPath:    "/usr/bin/docker",
		StorageRoot:   "/var/lib/docker",
		StorageDriver: DriverOverlay2,
		CanRead:       true,
		IsRunning:     true,
	}
	if info != want {
		t.Errorf("detectDocker = %+v, want %+v", info, want)
	}
}

func TestDetectDocker_SocketMeansRunning(t *testing.T) {
	h := newTestHost()
	h.install("docker")
	// `docker info` fails without docker group membership.
	h.exec.AddResponse("docker", nil, errors.New("permission denied"))
	h.fs.AddFile("/var/run/docker.sock", 0660)
	h.fs.AddDir("/var/lib/docker")
	h.fs.DenyList("/var/lib/docker")

	info, ok := detectDocker(context.Background(), h.Host, DefaultPaths())
	if !ok {
		t.Fatal("docker should be detected")
	}
	if !info.IsRunning {
		t.Error("socket presence should count as running")
	}
	if info.CanRead {
		t.Error("root-owned storage should not be readable")
	}
	if info.StorageDriver != DriverUnknown {
		t.Errorf("StorageDriver = %v, want unknown when the daemon query fails", info.StorageDriver)
	}
}

func TestDetectDocker_StoppedGuessesDriver(t *testing.T) {
	h := newTestHost()
	h.install("docker")
	h.fs.AddDir("/var/lib/docker/btrfs")

	info, _ := detectDocker(context.Background(), h.Host, DefaultPaths())

	if info.IsRunning {
		t.Error("docker should not be running")
	}
	if info.StorageDriver != DriverBtrfs {
		t.Errorf("StorageDriver = %v, want btrfs", info.StorageDriver)
	}
	if h.exec.Ran("docker info --format") {
		t.Error("a stopped daemon should not be queried for its driver")
	}
}

func TestDetectPodman_SystemStorage(t *testing.T) {
	h := newTestHost()
	h.install("podman")
	h.exec.AddResponse("podman info", nil, nil)
	h.exec.AddResponse("podman info --format {{.Store.GraphDriverName}}", []byte("vfs"), nil)
	h.fs.AddDir("/var/lib/containers/storage")

	info, ok := detectPodman(context.Background(), h.Host, DefaultPaths())
	if !ok {
		t.Fatal("podman should be detected")
	}
	if info.StorageRoot != "/var/lib/containers/storage" {
		t.Errorf("StorageRoot = %q", info.StorageRoot)
	}
	if info.StorageDriver != DriverVfs || !info.IsRunning || !info.CanRead {
		t.Errorf("detectPodman = %+v", info)
	}
}

func TestDetectPodman_RootlessFallback(t *testing.T) {
	h := newTestHost()
	h.install("podman")
	h.fs.AddDir("/var/lib/containers/storage")
	h.fs.DenyList("/var/lib/containers/storage")
	h.fs.AddDir("/home/user/.local/share/containers/storage/overlay")

	info, ok := detectPodman(context.Background(), h.Host, DefaultPaths())
	if !ok {
		t.Fatal("podman should be detected")
	}
	if info.StorageRoot != "/home/user/.local/share/containers/storage" {
		t.Errorf("StorageRoot = %q, want rootless path", info.StorageRoot)
	}
	if !info.CanRead {
		t.Error("rootless storage should be readable")
	}
	if info.StorageDriver != DriverUnknown {
		// "overlay" is the daemon's name, not a directory the heuristic knows.
		t.Errorf("StorageDriver = %v, want unknown", info.StorageDriver)
	}
}

func TestDetectPodman_NoHomeSkipsOnlyPodman(t *testing.T) {
	h := newTestHost()
	h.install("docker", "podman", "ctr")
	delete(h.env, "HOME")

	result := h.prober().Probe(context.Background())

	got := kinds(result)
	if len(got) != 2 || got[0] != KindDocker || got[1] != KindContainerd {
		t.Errorf("kinds = %v, want [docker containerd]", got)
	}
}

func TestDetectContainerd_FixedDriver(t *testing.T) {
	h := newTestHost()
	h.install("ctr")
	h.exec.AddResponse("ctr version", []byte("Client: v2"), nil)
	h.fs.AddDir("/var/lib/containerd/btrfs")

	info, ok := detectContainerd(context.Background(), h.Host, DefaultPaths())
	if !ok {
		t.Fatal("containerd should be detected")
	}
	if info.StorageDriver != DriverOverlay2 {
		t.Errorf("StorageDriver = %v, want overlay2", info.StorageDriver)
	}
	if !info.IsRunning {
		t.Error("ctr version succeeded, containerd should be running")
	}
	if info.StorageRoot != "/var/lib/containerd" || !info.CanRead {
		t.Errorf("detectContainerd = %+v", info)
	}
}

func TestSelect(t *testing.T) {
	h := newTestHost()
	h.install("docker", "podman", "ctr")
	base := h.prober().Probe(context.Background())

	tests := []struct {
		override string
		wantKind RuntimeKind
	}{
		{"", KindDocker},
		{"docker", KindDocker},
		{"Podman", KindPodman},
		{"containerd", KindContainerd},
		{"ctr", KindContainerd},
		{" CTR ", KindContainerd},
	}

	for _, tt := range tests {
		t.Run(tt.override, func(t *testing.T) {
			got, err := Select(base, tt.override)
			if err != nil {
				t.Fatalf("Select(%q) error: %v", tt.override, err)
			}
			rt, ok := got.DefaultRuntime()
			if !ok || rt.Kind != tt.wantKind {
				t.Errorf("Select(%q) default = %v, want %v", tt.override, rt.Kind, tt.wantKind)
			}
		})
	}

	if *base.Default != 0 {
		t.Errorf("Select mutated the input result: default = %d", *base.Default)
	}
}

func TestSelect_Errors(t *testing.T) {
	h := newTestHost()
	h.install("docker")
	base := h.prober().Probe(context.Background())

	_, err := Select(base, "rkt")
	if !errdefs.IsInvalidArgument(err) {
		t.Errorf("Select(rkt) error = %v, want invalid argument", err)
	}

	_, err = Select(base, "podman")
	if !errdefs.IsNotFound(err) {
		t.Errorf("Select(podman) error = %v, want not found", err)
	}
}

func TestResult_JSON(t *testing.T) {
	zero := 0
	result := Result{
		Runtimes: []RuntimeInfo{{
			Kind:          KindContainerd,
			BinaryPath:    "/usr/bin/ctr",
			StorageRoot:   "/var/lib/containerd",
			StorageDriver: DriverFuse,
			CanRead:       false,
			IsRunning:     true,
		}},
		Default: &zero,
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	want := `{"runtimes":[{"kind":"Containerd","binary_path":"/usr/bin/ctr","storage_root":"/var/lib/containerd","storage_driver":"Fuse","can_read":false,"is_running":true}],"default":0}`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}

	empty, err := json.Marshal(Result{Runtimes: []RuntimeInfo{}})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(empty) != `{"runtimes":[],"default":null}` {
		t.Errorf("empty JSON = %s", empty)
	}
}
