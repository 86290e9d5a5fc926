// Package hmsservices 平台信息
// 读取当前操作系统名称和版本，用于 getPlatformVersion
package hmsservices

import (
	"runtime" // 运行时信息，获取GOOS
	"strings" // 字符串处理
)

// PlatformInfo 平台元数据
type PlatformInfo interface {
	OSName() string
	OSVersion() string
}

// PlatformVersion 格式化为 "<OS name> <OS version>"
// 两部分为空时分别回退为GOOS和 "unknown"，保证结果始终非空
func PlatformVersion(p PlatformInfo) string {
	name := strings.TrimSpace(p.OSName())
	if name == "" {
		name = osDisplayName(runtime.GOOS)
	}
	version := strings.TrimSpace(p.OSVersion())
	if version == "" {
		version = "unknown"
	}
	return name + " " + version
}

// StaticPlatform 固定的平台信息
type StaticPlatform struct {
	Name    string
	Version string
}

func (p StaticPlatform) OSName() string    { return p.Name }
func (p StaticPlatform) OSVersion() string { return p.Version }

// hostPlatform 读取当前进程所在的操作系统
type hostPlatform struct{}

// HostPlatform 返回当前操作系统的平台信息
func HostPlatform() PlatformInfo {
	return hostPlatform{}
}

func (hostPlatform) OSName() string    { return osName() }
func (hostPlatform) OSVersion() string { return osVersion() }

var osDisplayNames = map[string]string{
	"android":   "Android",
	"darwin":    "macOS",
	"dragonfly": "DragonFly",
	"freebsd":   "FreeBSD",
	"illumos":   "illumos",
	"ios":       "iOS",
	"linux":     "Linux",
	"netbsd":    "NetBSD",
	"openbsd":   "OpenBSD",
	"solaris":   "Solaris",
	"windows":   "Windows",
}

// osDisplayName GOOS 对应的展示名称
func osDisplayName(goos string) string {
	if name, ok := osDisplayNames[goos]; ok {
		return name
	}
	if goos == "" {
		return "unknown"
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}
