package suite

import (
	"fmt"
)

type ResourceLimits struct {
	CPUShares int64 `json:"cpu_shares"` // 1024 = 1 CPU core
	MemoryMB  int64 `json:"memory_mb"`  // Hard memory limit
	PidsLimit int64 `json:"pids_limit"` // Max processes (fork bomb protection)
	DiskMB    int64 `json:"disk_mb"`    // Tmpfs size for /tmp
}

func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		CPUShares: 1024, // 1 CPU
		MemoryMB:  512,
		PidsLimit: 64,
		DiskMB:    100,
	}
}

func (rl ResourceLimits) Validate() error {
	if rl.CPUShares < 2 || rl.CPUShares > 8192 {
		return fmt.Errorf("%w: cpu_shares must be 2-8192, got %d", ErrInvalidRequest, rl.CPUShares)
	}
	if rl.MemoryMB < 16 || rl.MemoryMB > 16384 {
		return fmt.Errorf("%w: memory_mb must be 16-16384, got %d", ErrInvalidRequest, rl.MemoryMB)
	}
	if rl.PidsLimit < 5 || rl.PidsLimit > 2000 {
		return fmt.Errorf("%w: pids_limit must be 5-2000, got %d", ErrInvalidRequest, rl.PidsLimit)
	}
	if rl.DiskMB < 1 || rl.DiskMB > 10240 {
		return fmt.Errorf("%w: disk_mb must be 1-10240, got %d", ErrInvalidRequest, rl.DiskMB)
	}
	return nil
}

// DockerFlags renders the limits as docker run flags.
func (rl ResourceLimits) DockerFlags() []string {
	return []string{
		"--memory", fmt.Sprintf("%dm", rl.MemoryMB),
		"--memory-swap", fmt.Sprintf("%dm", rl.MemoryMB),
		"--pids-limit", fmt.Sprintf("%d", rl.PidsLimit),
		"--cpus", fmt.Sprintf("%.1f", float64(rl.CPUShares)/1024.0),
		"--tmpfs", fmt.Sprintf("/tmp:rw,nosuid,nodev,size=%dm", rl.DiskMB),
	}
}
