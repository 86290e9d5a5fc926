//go:build windows

package hmsservices

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func osName() string {
	return "Windows"
}

// osVersion 形如 10.0.19045
// RtlGetVersion 不受应用清单兼容性设置影响
func osVersion() string {
	v := windows.RtlGetVersion()
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}
