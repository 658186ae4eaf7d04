//go:build windows

package freqsource

import (
	"context"
	"fmt"

	"github.com/StackExchange/wmi"
	"github.com/shirou/gopsutil/v3/cpu"
)

// win32Processor mirrors the Win32_Processor WMI class fields we query.
type win32Processor struct {
	CurrentClockSpeed         uint32 // MHz
	NumberOfLogicalProcessors uint32
}

// WindowsReader reads per-core frequency from WMI, falling back to
// gopsutil CPU info. Windows only exposes a per-socket clock, so every
// logical core of a socket reports that socket's current speed.
type WindowsReader struct {
	deps windowsDeps
}

type windowsDeps struct {
	countsWithContext func(context.Context, bool) (int, error)
	infoWithContext   func(context.Context) ([]cpu.InfoStat, error)
	queryProcessors   func() ([]win32Processor, error)
}

func defaultWindowsDeps() windowsDeps {
	return windowsDeps{
		countsWithContext: cpu.CountsWithContext,
		infoWithContext:   cpu.InfoWithContext,
		queryProcessors:   queryWin32Processors,
	}
}

// newPlatformReader creates a Windows frequency reader.
func newPlatformReader() Reader {
	return &WindowsReader{deps: defaultWindowsDeps()}
}

// ReadAllCores returns one reading per logical core, ordered by core index.
func (r *WindowsReader) ReadAllCores(ctx context.Context) ([]Reading, error) {
	logicalCount, err := r.deps.countsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%w: determining logical cpu count: %v", ErrMalformed, err)
	}

	if logicalCount <= 0 {
		return nil, ErrNotSupported
	}

	perCore := make(map[int]uint64, logicalCount)

	if procs, err := r.deps.queryProcessors(); err == nil {
		core := 0
		for _, proc := range procs {
			khz := uint64(proc.CurrentClockSpeed) * 1000
			width := int(proc.NumberOfLogicalProcessors)
			if width <= 0 {
				width = 1
			}
			for i := 0; i < width && core < logicalCount; i++ {
				perCore[core] = khz
				core++
			}
		}
	}

	if len(perCore) == 0 {
		infoStats, err := r.deps.infoWithContext(ctx)
		if err != nil {
			infoStats = nil
		}
		for _, stat := range infoStats {
			coreID := int(stat.CPU)
			if coreID < 0 || stat.Mhz <= 0 {
				continue
			}
			perCore[coreID] = mhzToKHz(stat.Mhz)
		}
	}

	readings := make([]Reading, 0, logicalCount)
	available := 0

	for core := 0; core < logicalCount; core++ {
		if khz, ok := perCore[core]; ok && khz > 0 {
			readings = append(readings, Reading{Core: core, FrequencyKHz: khz, Available: true})
			available++
			continue
		}
		readings = append(readings, Reading{Core: core})
	}

	if available == 0 {
		return nil, ErrNotSupported
	}

	return readings, nil
}

func queryWin32Processors() ([]win32Processor, error) {
	const query = "SELECT CurrentClockSpeed, NumberOfLogicalProcessors FROM Win32_Processor"

	var procs []win32Processor
	if err := wmi.Query(query, &procs); err != nil {
		return nil, err
	}
	return procs, nil
}
