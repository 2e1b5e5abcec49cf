//go:build !windows && !linux

package catalog

import (
	"os"
	"time"
)

// fileCreatedTime falls back to ModTime on platforms where the birth time
// syscall field isn't generically available through this codebase's minimal
// platform split (spec §9 leaves the exact "created" units
// implementation-defined)
func fileCreatedTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
