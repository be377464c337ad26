package profile

import (
	"codeberg.org/mutker/perfgov/internal/errors"
	"codeberg.org/mutker/perfgov/internal/logger"
	"codeberg.org/mutker/perfgov/internal/settings"
)

// Profile is a named tier of emulator settings, totally ordered by intensity.
type Profile int

const (
	BatterySaver Profile = iota
	Balanced
	Performance
)

const (
	sectionCore  = "Core"
	sectionVideo = "Video"
	sectionAudio = "Audio"
)

type entry struct {
	section string
	key     string
	value   any
}

// Each profile owns a full configuration snapshot, never a delta. Applying
// any profile overwrites every key the governor manages, so repeated or
// alternating applications cannot leave stale values behind.
var profileEntries = map[Profile][]entry{
	BatterySaver: {
		{sectionCore, "CPUThread", true},
		{sectionCore, "EmulationSpeed", 100},
		{sectionCore, "OverclockEnable", false},
		{sectionCore, "Overclock", 100},
		{sectionCore, "SyncOnSkipIdle", true},
		{sectionVideo, "InternalResolution", 1},
		{sectionVideo, "ShaderCompilationMode", "skip-drawing"},
		{sectionVideo, "MSAA", 1},
		{sectionVideo, "VSync", true},
		{sectionVideo, "SkipDuplicateFrames", true},
		{sectionAudio, "AudioStretch", false},
	},
	Balanced: {
		{sectionCore, "CPUThread", true},
		{sectionCore, "EmulationSpeed", 100},
		{sectionCore, "OverclockEnable", false},
		{sectionCore, "Overclock", 100},
		{sectionCore, "SyncOnSkipIdle", true},
		{sectionVideo, "InternalResolution", 2},
		{sectionVideo, "ShaderCompilationMode", "hybrid"},
		{sectionVideo, "MSAA", 1},
		{sectionVideo, "VSync", true},
		{sectionVideo, "SkipDuplicateFrames", false},
		{sectionAudio, "AudioStretch", true},
	},
	Performance: {
		{sectionCore, "CPUThread", true},
		{sectionCore, "EmulationSpeed", 100},
		{sectionCore, "OverclockEnable", true},
		{sectionCore, "Overclock", 130},
		{sectionCore, "SyncOnSkipIdle", false},
		{sectionVideo, "InternalResolution", 3},
		{sectionVideo, "ShaderCompilationMode", "hybrid"},
		{sectionVideo, "MSAA", 2},
		{sectionVideo, "VSync", false},
		{sectionVideo, "SkipDuplicateFrames", false},
		{sectionAudio, "AudioStretch", true},
	},
}

var profileNames = map[Profile]string{
	BatterySaver: "battery_saver",
	Balanced:     "balanced",
	Performance:  "performance",
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}

	return "unknown"
}

// Parse resolves a persisted profile name. Unknown names fall back to
// Balanced so stale preference files never wedge the governor.
func Parse(name string) (Profile, error) {
	errFactory := errors.New()

	for p, n := range profileNames {
		if n == name {
			return p, nil
		}
	}

	return Balanced, errFactory.WithData(errors.ErrInvalidArgument, name)
}

// Less reports whether p is a lower-intensity tier than other.
func (p Profile) Less(other Profile) bool {
	return p < other
}

// StepDown returns the next lower tier; BatterySaver is the floor.
func (p Profile) StepDown() Profile {
	if p <= BatterySaver {
		return BatterySaver
	}

	return p - 1
}

// Apply writes the profile's full key set into the store at the given layer
// and saves. Computing a profile is pure; Apply is the only side effect.
// Store failures are logged and swallowed: a missed write is recovered by
// the next apply, and the control loop must keep running.
func (p Profile) Apply(store settings.Store, layer settings.Layer) {
	errFactory := errors.New()

	for _, e := range profileEntries[p] {
		switch v := e.value.(type) {
		case bool:
			store.SetBool(layer, e.section, e.key, v)
		case int:
			store.SetInt(layer, e.section, e.key, v)
		case string:
			store.SetString(layer, e.section, e.key, v)
		}
	}

	if err := store.Save(); err != nil {
		logger.ErrorWithCode(errFactory.Wrap(errors.ErrSettingsSave, err)).
			Str("profile", p.String()).
			Msg("Failed to save applied profile")
	}
}
