//go:build windows

package sysinfo

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func sample() MemInfo {
	info := MemInfo{PageSize: int(windows.Getpagesize())}

	var status windows.MemoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))

	if err := windows.GlobalMemoryStatusEx(&status); err == nil {
		info.TotalRAM = status.TotalPhys
		info.FreeRAM = status.AvailPhys
	}

	return info
}
