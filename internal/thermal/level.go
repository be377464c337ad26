package thermal

// Level is the discretized severity of device heat buildup, ordered by
// severity index. It mirrors the platform thermal status codes 0..6.
type Level int

const (
	None Level = iota
	Light
	Moderate
	Severe
	Critical
	Emergency
	Shutdown
)

var levelNames = map[Level]string{
	None:      "none",
	Light:     "light",
	Moderate:  "moderate",
	Severe:    "severe",
	Critical:  "critical",
	Emergency: "emergency",
	Shutdown:  "shutdown",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return "unknown"
}

// FromStatus maps a raw platform thermal status code to a Level. Anything
// outside the known range maps to None: missing or garbage data must never
// escalate throttling.
func FromStatus(status int) Level {
	if status < int(None) || status > int(Shutdown) {
		return None
	}

	return Level(status)
}

// FromCelsius buckets a whole-degree battery temperature into a Level using
// closed-open intervals. The breakpoints are exhaustive and non-overlapping;
// boundary values map to the higher bucket.
func FromCelsius(celsius int) Level {
	switch {
	case celsius < 35:
		return None
	case celsius < 40:
		return Light
	case celsius < 45:
		return Moderate
	case celsius < 50:
		return Severe
	case celsius < 55:
		return Critical
	default:
		return Emergency
	}
}
