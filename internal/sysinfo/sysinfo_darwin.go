//go:build darwin

package sysinfo

import "golang.org/x/sys/unix"

func sample() MemInfo {
	info := MemInfo{PageSize: unix.Getpagesize()}

	if total, err := unix.SysctlUint64("hw.memsize"); err == nil {
		info.TotalRAM = total
	}

	// BSD/Darwin don't expose a single "free RAM" sysctl the way Linux's
	// sysinfo(2) does; leaving FreeRAM at zero here is honest rather than
	// approximating it from the page-free/inactive counts.
	return info
}
