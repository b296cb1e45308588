//go:build darwin

package cpuinfo

import (
	"runtime"
	"syscall"
)

// DetectOptimalWorkers detects optimal worker count on macOS
// Prefers performance cores over efficiency cores for CPU-intensive tasks
func DetectOptimalWorkers() int {
	// Try to detect performance cores (Apple Silicon M1/M2/M3)
	perfCores := getPerfCoresDarwin()
	if perfCores > 0 {
		return perfCores
	}

	// Fallback to all logical CPUs
	return runtime.NumCPU()
}

// getPerfCoresDarwin returns the number of performance cores on Apple Silicon
func getPerfCoresDarwin() int {
	// Try hw.perflevel0.physicalcpu (performance cores)
	// Note: syscall.Sysctl returns the value's raw bytes in a string, not decimal text
	result, err := syscall.Sysctl("hw.perflevel0.physicalcpu")
	if err == nil && len(result) > 0 {
		// Parse as little-endian integer
		count := int(result[0])
		if len(result) > 1 {
			count |= int(result[1]) << 8
		}
		if count > 0 {
			return count
		}
	}

	// Fallback: try hw.physicalcpu (total physical cores)
	result, err = syscall.Sysctl("hw.physicalcpu")
	if err == nil && len(result) > 0 {
		count := int(result[0])
		if len(result) > 1 {
			count |= int(result[1]) << 8
		}
		if count > 0 {
			return count
		}
	}

	return 0
}
