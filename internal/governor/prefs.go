package governor

import (
	"os"
	"path/filepath"
	"strconv"

	"codeberg.org/mutker/perfgov/internal/errors"
	"codeberg.org/mutker/perfgov/internal/profile"
	"gopkg.in/ini.v1"
)

const (
	prefsSection = "governor"
	prefsProfile = "profile"
	prefsAuto    = "auto_thermal_management"

	defaultDirPerm = 0o755
)

// PreferenceStore persists the two pieces of user intent the governor owns:
// the selected profile and the auto-management flag.
type PreferenceStore interface {
	// LoadProfile returns the persisted profile name and whether one was set.
	LoadProfile() (string, bool)
	// LoadAuto returns the persisted flag and whether one was set.
	LoadAuto() (bool, bool)
	StoreProfile(p profile.Profile) error
	StoreAuto(enabled bool) error
}

// IniPreferences is an INI-backed PreferenceStore, written on every change.
type IniPreferences struct {
	path string
	file *ini.File
}

func OpenIniPreferences(path string) (*IniPreferences, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(errors.ErrInvalidArgument)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrPrefsLoad, err)
	}

	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrPrefsLoad, err)
	}

	return &IniPreferences{path: path, file: file}, nil
}

func (p *IniPreferences) LoadProfile() (string, bool) {
	if !p.file.Section(prefsSection).HasKey(prefsProfile) {
		return "", false
	}

	return p.file.Section(prefsSection).Key(prefsProfile).String(), true
}

func (p *IniPreferences) LoadAuto() (bool, bool) {
	if !p.file.Section(prefsSection).HasKey(prefsAuto) {
		return false, false
	}

	value, err := p.file.Section(prefsSection).Key(prefsAuto).Bool()
	if err != nil {
		return false, false
	}

	return value, true
}

func (p *IniPreferences) StoreProfile(pr profile.Profile) error {
	p.file.Section(prefsSection).Key(prefsProfile).SetValue(pr.String())

	return p.save()
}

func (p *IniPreferences) StoreAuto(enabled bool) error {
	p.file.Section(prefsSection).Key(prefsAuto).SetValue(strconv.FormatBool(enabled))

	return p.save()
}

func (p *IniPreferences) save() error {
	errFactory := errors.New()

	if err := p.file.SaveTo(p.path); err != nil {
		return errFactory.Wrap(errors.ErrPrefsSave, err)
	}

	return nil
}
