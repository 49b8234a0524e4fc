package threats

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemMetricsProvider feeds the infrastructure monitor's
// resource-exhaustion checks.
type SystemMetricsProvider interface {
	MemoryUsedPercent() (float64, error)
	CPUPercent() (float64, error)
}

type GopsutilMetricsProvider struct{}

func (p *GopsutilMetricsProvider) MemoryUsedPercent() (float64, error) {
	memoryStats, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}

	return memoryStats.UsedPercent, nil
}

func (p *GopsutilMetricsProvider) CPUPercent() (float64, error) {
	// Interval 0 returns usage since the previous call without blocking
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}

	if len(percentages) == 0 {
		return 0, nil
	}

	return percentages[0], nil
}
