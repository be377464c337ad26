package topology

import (
	"strings"

	"codeberg.org/mutker/perfgov/internal/logger"
)

// Span is a half-open range [Start, End) of core indices. The zero value is
// empty.
type Span struct {
	Start int
	End   int
}

// Size returns the number of cores in the span.
func (s Span) Size() int {
	if s.End <= s.Start {
		return 0
	}

	return s.End - s.Start
}

// Cores returns the core indices in the span.
func (s Span) Cores() []int {
	cores := make([]int, 0, s.Size())
	for i := s.Start; i < s.End; i++ {
		cores = append(cores, i)
	}

	return cores
}

// Topology is the partition of physical cores into heterogeneous performance
// classes. On unrecognized hardware all class spans are empty and consumers
// degrade to default OS scheduling. Immutable after detection; safe for
// unsynchronized concurrent reads.
type Topology struct {
	TotalCores int
	Recognized bool
	SoC        string
	Prime      Span
	Gold       Span
	Silver     Span
}

// DeviceIdentifier exposes read-only hardware identification strings,
// consumed once by detection.
type DeviceIdentifier interface {
	SoCModel() string
	SoCManufacturer() string
	DeviceCodename() string
}

type layout struct {
	name          string
	models        []string
	manufacturers []string
	cores         int
	prime         Span
	gold          Span
	silver        Span
}

// Cluster layouts from public core-count and cluster-size data. Matching is
// substring-based, like the platform SoC properties it reads.
var knownLayouts = []layout{
	{
		name:          "Snapdragon 8 Gen 2",
		models:        []string{"SM8550", "kalama"},
		manufacturers: []string{"Qualcomm", "QTI"},
		cores:         8,
		prime:         Span{0, 1}, // Cortex-X3
		gold:          Span{1, 5}, // Cortex-A715/A710
		silver:        Span{5, 8}, // Cortex-A510
	},
	{
		name:          "Snapdragon 8 Gen 1",
		models:        []string{"SM8450", "taro"},
		manufacturers: []string{"Qualcomm", "QTI"},
		cores:         8,
		prime:         Span{0, 1}, // Cortex-X2
		gold:          Span{1, 4}, // Cortex-A710
		silver:        Span{4, 8}, // Cortex-A510
	},
	{
		name:          "Snapdragon 888",
		models:        []string{"SM8350", "lahaina"},
		manufacturers: []string{"Qualcomm", "QTI"},
		cores:         8,
		prime:         Span{0, 1}, // Cortex-X1
		gold:          Span{1, 4}, // Cortex-A78
		silver:        Span{4, 8}, // Cortex-A55
	},
}

// Detect matches the host's identification strings against known cluster
// layouts. Pure and deterministic for a given host; the composition root
// calls it once and shares the result. Absence of a match is a valid
// outcome, never an error.
func Detect(id DeviceIdentifier, totalCores int) Topology {
	unrecognized := Topology{TotalCores: totalCores}

	if id == nil || totalCores <= 0 {
		return unrecognized
	}

	model := id.SoCModel()
	manufacturer := id.SoCManufacturer()

	for _, l := range knownLayouts {
		if !matchesAny(model, l.models) || !matchesAny(manufacturer, l.manufacturers) {
			continue
		}

		if totalCores < l.cores {
			// Identification strings promise a layout the hardware
			// does not have; trust the core count.
			logger.Warn().
				Str("soc", l.name).
				Int("total_cores", totalCores).
				Int("expected_cores", l.cores).
				Msg("SoC matched but core count disagrees, affinity disabled")
			return unrecognized
		}

		logger.Info().
			Str("soc", l.name).
			Str("model", model).
			Ints("prime", l.prime.Cores()).
			Ints("gold", l.gold.Cores()).
			Ints("silver", l.silver.Cores()).
			Int("total_cores", totalCores).
			Msg("Detected CPU topology")

		return Topology{
			TotalCores: totalCores,
			Recognized: true,
			SoC:        l.name,
			Prime:      l.prime,
			Gold:       l.gold,
			Silver:     l.silver,
		}
	}

	logger.Warn().
		Str("model", model).
		Str("manufacturer", manufacturer).
		Str("device", id.DeviceCodename()).
		Msg("Unrecognized CPU topology, affinity disabled")

	return unrecognized
}

func matchesAny(value string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}

	return false
}
