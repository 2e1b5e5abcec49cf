//go:build windows

package catalog

import (
	"os"
	"syscall"
	"time"
)

// fileCreatedTime reads the true creation time Windows exposes natively
func fileCreatedTime(info os.FileInfo) time.Time {
	attrs, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(0, attrs.CreationTime.Nanoseconds())
}
