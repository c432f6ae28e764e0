// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build unix

package timer

import (
	"time"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// processCPUTime returns the user+system CPU time consumed so far by the process.
func processCPUTime() time.Duration {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		klog.V(1).Infof("timer: getrusage failed: %v", err)
		return 0
	}
	return time.Duration(usage.Utime.Nano() + usage.Stime.Nano())
}
