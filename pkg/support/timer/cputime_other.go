// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !unix

package timer

import "time"

// processCPUTime is not available on this platform.
func processCPUTime() time.Duration { return 0 }
