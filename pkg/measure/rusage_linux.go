//go:build linux

package measure

import (
	"time"

	"golang.org/x/sys/unix"
)

type usage struct {
	user   time.Duration
	sys    time.Duration
	maxRSS int64
}

// readRusage samples getrusage(RUSAGE_SELF). Linux reports ru_maxrss in kilobytes.
func readRusage() (usage, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return usage{}, err
	}
	return usage{
		user:   time.Duration(ru.Utime.Nano()),
		sys:    time.Duration(ru.Stime.Nano()),
		maxRSS: int64(ru.Maxrss) * 1024,
	}, nil
}
