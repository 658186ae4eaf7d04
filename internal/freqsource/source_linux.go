//go:build linux

package freqsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

const sysfsCpufreqRoot = "/sys/devices/system/cpu"

// LinuxReader reads per-core frequency from the cpufreq sysfs interface,
// falling back to /proc/cpuinfo via gopsutil for cores without cpufreq.
type LinuxReader struct {
	sysfsRoot string
	deps      linuxDeps
}

type linuxDeps struct {
	countsWithContext func(context.Context, bool) (int, error)
	infoWithContext   func(context.Context) ([]cpu.InfoStat, error)
	readCoreKHz       func(root string, core int) (uint64, error)
}

func defaultLinuxDeps() linuxDeps {
	return linuxDeps{
		countsWithContext: cpu.CountsWithContext,
		infoWithContext:   cpu.InfoWithContext,
		readCoreKHz:       readSysfsKHz,
	}
}

// newPlatformReader creates a Linux frequency reader.
func newPlatformReader() Reader {
	return &LinuxReader{
		sysfsRoot: sysfsCpufreqRoot,
		deps:      defaultLinuxDeps(),
	}
}

// ReadAllCores returns one reading per logical core, ordered by core index.
func (r *LinuxReader) ReadAllCores(ctx context.Context) ([]Reading, error) {
	logicalCount, err := r.deps.countsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%w: determining logical cpu count: %v", ErrMalformed, err)
	}

	if logicalCount <= 0 {
		return nil, ErrNotSupported
	}

	// /proc/cpuinfo frequencies, keyed by core, for cores without cpufreq.
	infoStats, err := r.deps.infoWithContext(ctx)
	if err != nil {
		infoStats = nil
	}

	fallbackByCore := make(map[int]uint64, len(infoStats))
	for _, stat := range infoStats {
		coreID := int(stat.CPU)
		if coreID < 0 || stat.Mhz <= 0 {
			continue
		}
		fallbackByCore[coreID] = mhzToKHz(stat.Mhz)
	}

	readings := make([]Reading, 0, logicalCount)
	available := 0

	for core := 0; core < logicalCount; core++ {
		khz, err := r.deps.readCoreKHz(r.sysfsRoot, core)
		switch {
		case err == nil:
			readings = append(readings, Reading{Core: core, FrequencyKHz: khz, Available: true})
			available++
			continue
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: cpu%d: %v", ErrAccessDenied, core, err)
		case errors.Is(err, ErrMalformed):
			return nil, fmt.Errorf("cpu%d: %w", core, err)
		}

		if khz, ok := fallbackByCore[core]; ok && khz > 0 {
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

// readSysfsKHz reads cpu<N>/cpufreq/scaling_cur_freq, which the kernel
// reports in kHz.
func readSysfsKHz(root string, core int) (uint64, error) {
	path := filepath.Join(root, fmt.Sprintf("cpu%d/cpufreq/scaling_cur_freq", core))

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrMalformed, path)
	}

	khz, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	return khz, nil
}
