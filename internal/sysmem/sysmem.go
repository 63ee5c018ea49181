// Package sysmem reports host memory for admission checks.
package sysmem

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// Available returns the memory the kernel considers available to new
// allocations, in bytes.
func Available() (uint64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("read virtual memory: %w", err)
	}
	return v.Available, nil
}
