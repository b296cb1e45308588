//go:build !darwin && !linux

package cpuinfo

import "runtime"

// DetectOptimalWorkers fallback for unsupported operating systems
func DetectOptimalWorkers() int {
	return runtime.NumCPU()
}
