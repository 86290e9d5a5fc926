//go:build !unix && !windows

package hmsservices

import "runtime"

func osName() string {
	return osDisplayName(runtime.GOOS)
}

// osVersion 该平台没有可读取的版本信息
func osVersion() string {
	return ""
}
