//go:build darwin

package watcher

import (
	"strings"

	"golang.org/x/sys/unix"
)

func statfsType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	name := unix.ByteSliceToString(st.Fstypename[:])
	switch {
	case name == "nfs":
		return FSTypeNFS
	case name == "smbfs":
		return FSTypeSMB
	case strings.Contains(name, "sshfs"):
		return FSTypeSSHFS
	case strings.HasPrefix(name, "osxfuse"), strings.HasPrefix(name, "macfuse"), name == "fusefs":
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
