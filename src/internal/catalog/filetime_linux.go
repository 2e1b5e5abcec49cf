//go:build linux

package catalog

import (
	"os"
	"syscall"
	"time"
)

// fileCreatedTime returns the best-effort file creation time for info. Most
// Linux filesystems don't expose a true birth time through syscall.Stat_t,
// so this falls back to the inode's change time (Ctim), which is never
// earlier than the real creation time and moves forward on any later
// metadata change - good enough for "created time used to order newest
// albums" (spec §3)
func fileCreatedTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
}
