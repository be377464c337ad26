package thermal

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/perfgov/internal/errors"
)

const defaultThermalRoot = "/sys/class/thermal"

// SysfsStatusProvider derives a thermal status from the kernel thermal
// framework: per zone, the number of trip points at or below the current
// temperature. The worst zone wins, clamped to the 0..6 status range. Zones
// without readable trip points carry no signal and are skipped, so a host
// with none at all fails the startup capability check and selection falls
// back to the battery estimate.
type SysfsStatusProvider struct {
	root string
}

func NewSysfsStatusProvider(root ...string) *SysfsStatusProvider {
	r := defaultThermalRoot
	if len(root) > 0 {
		r = root[0]
	}

	return &SysfsStatusProvider{root: r}
}

func (p *SysfsStatusProvider) ThermalStatus() (int, error) {
	errFactory := errors.New()

	zones, err := filepath.Glob(filepath.Join(p.root, "thermal_zone*"))
	if err != nil || len(zones) == 0 {
		return 0, errFactory.New(errors.ErrSensorRead)
	}

	status := -1
	for _, zone := range zones {
		temp, err := readIntFile(filepath.Join(zone, "temp"))
		if err != nil {
			continue
		}

		trips, _ := filepath.Glob(filepath.Join(zone, "trip_point_*_temp"))
		tripped, readable := 0, 0
		for _, trip := range trips {
			threshold, err := readIntFile(trip)
			if err != nil {
				continue
			}
			readable++
			if temp >= threshold {
				tripped++
			}
		}

		if readable == 0 {
			continue
		}
		if tripped > status {
			status = tripped
		}
	}

	if status < 0 {
		return 0, errFactory.New(errors.ErrSensorRead)
	}
	if status > int(Shutdown) {
		status = int(Shutdown)
	}

	return status, nil
}

func readIntFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

// Default battery temperature nodes, in preference order. Android exposes
// tenths of a degree Celsius under power_supply; some kernels use
// millidegrees, which we normalize.
var defaultBatteryPaths = []string{
	"/sys/class/power_supply/battery/temp",
	"/sys/class/power_supply/bms/temp",
	"/sys/class/power_supply/BAT0/temp",
}

// SysfsBatteryProvider reads battery temperature from the first responsive
// sysfs node.
type SysfsBatteryProvider struct {
	paths []string
}

func NewSysfsBatteryProvider(paths ...string) *SysfsBatteryProvider {
	if len(paths) == 0 {
		paths = defaultBatteryPaths
	}

	return &SysfsBatteryProvider{paths: paths}
}

// BatteryTemperature returns tenths of a degree Celsius.
func (p *SysfsBatteryProvider) BatteryTemperature() (int, error) {
	errFactory := errors.New()

	for _, path := range p.paths {
		value, err := readIntFile(path)
		if err != nil {
			continue
		}

		// Millidegree nodes report values like 37600; tenths report 376.
		if value > 2000 || value < -2000 {
			value /= 100
		}

		return value, nil
	}

	return 0, errFactory.New(errors.ErrSensorRead)
}
