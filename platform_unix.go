//go:build unix && !darwin

package hmsservices

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func osName() string {
	return osDisplayName(runtime.GOOS)
}

// osVersion 内核版本号（uname -r）
func osVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
