//go:build unix

package escalate

import (
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// PathOwner returns the account that owns path, falling back to the
// numeric uid when it has no passwd entry.
func PathOwner(path string) (string, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return "", false
	}
	uid := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(uid); err == nil {
		return u.Username, true
	}
	return "uid " + uid, true
}

// IsRoot reports whether the process runs with an effective uid of 0.
func IsRoot() bool {
	return unix.Geteuid() == 0
}
