package thermal

import (
	"codeberg.org/mutker/perfgov/internal/errors"
	"codeberg.org/mutker/perfgov/internal/logger"
)

// StatusProvider exposes the platform's native thermal status facility,
// returning a raw severity code 0..6. Optional: absent on older platforms.
type StatusProvider interface {
	ThermalStatus() (int, error)
}

// TemperatureProvider reads the instantaneous battery temperature in tenths
// of a degree Celsius. Fallback signal when no native status is available.
type TemperatureProvider interface {
	BatteryTemperature() (int, error)
}

// Sensor produces a normalized thermal-pressure level from whatever signal
// it wraps. Sample never fails: every degraded path resolves to None.
type Sensor interface {
	Sample() Level
}

// NativeSensor samples the platform thermal status facility.
type NativeSensor struct {
	provider StatusProvider
}

func NewNativeSensor(provider StatusProvider) *NativeSensor {
	return &NativeSensor{provider: provider}
}

func (s *NativeSensor) Sample() Level {
	status, err := s.provider.ThermalStatus()
	if err != nil {
		// Unavailable, not an escalation
		logger.Debug().Err(err).Msg("Thermal status unavailable")
		return None
	}

	return FromStatus(status)
}

// BatterySensor estimates thermal pressure from battery temperature.
type BatterySensor struct {
	provider TemperatureProvider
}

func NewBatterySensor(provider TemperatureProvider) *BatterySensor {
	return &BatterySensor{provider: provider}
}

func (s *BatterySensor) Sample() Level {
	tenths, err := s.provider.BatteryTemperature()
	if err != nil {
		errFactory := errors.New()
		logger.Warn().
			Str("error_code", string(errors.ErrSensorRead)).
			AnErr("error", errFactory.Wrap(errors.ErrSensorRead, err)).
			Msg("Battery temperature unavailable, assuming no thermal pressure")
		return None
	}

	return FromCelsius(tenths / 10)
}

// NullSensor reports no thermal pressure. Used when no signal exists at all.
type NullSensor struct{}

func (NullSensor) Sample() Level {
	return None
}

// Select picks the best available sensor once at startup: native status if
// it answers, battery estimate if readable, otherwise the null sensor.
// Per-sample failures after selection still collapse to None.
func Select(status StatusProvider, battery TemperatureProvider) Sensor {
	if status != nil {
		if _, err := status.ThermalStatus(); err == nil {
			logger.Info().Msg("Thermal sensing: native thermal status")
			return NewNativeSensor(status)
		}
	}

	if battery != nil {
		if _, err := battery.BatteryTemperature(); err == nil {
			logger.Info().Msg("Thermal sensing: battery temperature estimate")
			return NewBatterySensor(battery)
		}
	}

	logger.Warn().Msg("Thermal sensing unavailable, governor will never throttle")

	return NullSensor{}
}
