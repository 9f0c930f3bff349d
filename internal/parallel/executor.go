package parallel

import (
	"runtime"
	"time"
)

// ExecutorKind selects how the post-pilot segments are executed.
type ExecutorKind int

const (
	// ExecSerial runs segments on the calling goroutine; for cheap
	// segments the pool overhead exceeds the work.
	ExecSerial ExecutorKind = iota

	// ExecBalanced runs a conservative pool, half the CPUs.
	ExecBalanced

	// ExecWide runs one worker per CPU for compute-bound segments.
	ExecWide
)

func (k ExecutorKind) String() string {
	switch k {
	case ExecSerial:
		return "serial"
	case ExecBalanced:
		return "balanced"
	case ExecWide:
		return "wide"
	default:
		return "unknown"
	}
}

// Latency thresholds for the executor policy, calibrated so the pilot only
// escalates when segment cost clearly dominates scheduling cost.
const (
	serialLatencyCeiling = 200 * time.Microsecond
	wideLatencyFloor     = 5 * time.Millisecond
)

// ChooseExecutor maps the pilot batch's average segment latency to an
// executor kind. Kept free of pool state so the policy is testable in
// isolation.
func ChooseExecutor(avg time.Duration) ExecutorKind {
	switch {
	case avg <= serialLatencyCeiling:
		return ExecSerial
	case avg >= wideLatencyFloor:
		return ExecWide
	default:
		return ExecBalanced
	}
}

// Workers returns the pool width for the kind, capped by the caller's
// configured maximum when it is positive.
func (k ExecutorKind) Workers(maxWorkers int) int {
	var n int
	switch k {
	case ExecSerial:
		n = 1
	case ExecBalanced:
		n = runtime.NumCPU() / 2
	default:
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	if maxWorkers > 0 && n > maxWorkers {
		n = maxWorkers
	}
	return n
}
