package settings

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"codeberg.org/mutker/perfgov/internal/errors"
	"gopkg.in/ini.v1"
)

const defaultDirPerm = 0o755

// IniStore persists base-layer settings to an INI file the emulator reads.
// Current-run writes shadow the base layer in memory and are never saved.
type IniStore struct {
	path    string
	file    *ini.File
	mu      sync.Mutex
	shadow  map[string]string
	changed bool
}

func NewIniStore(path string) (*IniStore, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(errors.ErrInvalidArgument)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	return &IniStore{
		path:   path,
		file:   file,
		shadow: make(map[string]string),
	}, nil
}

func (s *IniStore) SetBool(layer Layer, section, key string, value bool) {
	s.set(layer, section, key, strconv.FormatBool(value))
}

func (s *IniStore) SetInt(layer Layer, section, key string, value int) {
	s.set(layer, section, key, strconv.Itoa(value))
}

func (s *IniStore) SetString(layer Layer, section, key, value string) {
	s.set(layer, section, key, value)
}

func (s *IniStore) set(layer Layer, section, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layer == LayerCurrentRun {
		s.shadow[section+"/"+key] = value
		return
	}

	s.file.Section(section).Key(key).SetValue(value)
	s.changed = true
}

// Save writes the base layer to disk. Current-run values are intentionally
// not persisted.
func (s *IniStore) Save() error {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.changed {
		return nil
	}

	if err := s.file.SaveTo(s.path); err != nil {
		return errFactory.Wrap(errors.ErrSettingsSave, err)
	}
	s.changed = false

	return nil
}

// Get returns the effective value for a key, with current-run shadowing base.
// The emulator reads the saved file directly; this accessor exists for the
// status endpoint and tests.
func (s *IniStore) Get(section, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.shadow[section+"/"+key]; ok {
		return v, true
	}

	if !s.file.Section(section).HasKey(key) {
		return "", false
	}

	return s.file.Section(section).Key(key).String(), true
}
