//go:build darwin

package hmsservices

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func osName() string {
	return osDisplayName(runtime.GOOS)
}

// osVersion 产品版本号，如 14.4 或 17.4；取不到时回退为Darwin内核版本
func osVersion() string {
	if v, err := unix.Sysctl("kern.osproductversion"); err == nil && v != "" {
		return v
	}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
