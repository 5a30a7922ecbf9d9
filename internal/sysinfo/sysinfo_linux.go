//go:build linux

package sysinfo

import "golang.org/x/sys/unix"

func sample() MemInfo {
	info := MemInfo{PageSize: unix.Getpagesize()}

	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		unit := uint64(si.Unit)
		if unit == 0 {
			unit = 1
		}

		info.TotalRAM = uint64(si.Totalram) * unit
		info.FreeRAM = uint64(si.Freeram) * unit
	}

	return info
}
