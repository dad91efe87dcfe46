// =============================================================================
// Price Compare - Configuration Module
// =============================================================================
//
// This module loads the two configuration files the application uses:
//
//   1. Settings (settings.yaml): the persisted export/import conventions.
//      Loaded at startup, merge-defaulted, and written back on explicit save.
//   2. Sources (sources.yaml): the list of price lists to compare together
//      with each file's header row and column selections.
//
// Settings are injected into the formatter/parser at call time; nothing in
// the engine looks them up globally.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultCSVSeparator separates fields in exported files.
	DefaultCSVSeparator = ","

	// DefaultDecimalSeparator separates the integer and fractional part of prices.
	DefaultDecimalSeparator = "."

	// DefaultThousandsSeparator groups the integer part of prices.
	DefaultThousandsSeparator = ","

	// DefaultMaxConcurrency bounds how many sources are read at once.
	DefaultMaxConcurrency = 4
)

// =============================================================================
// SETTINGS STRUCTURE
// =============================================================================

// Settings holds the persisted number/field conventions used by exports and
// imports. Each value is exactly one character.
type Settings struct {
	// CSVSeparator is the field separator of exported/imported files.
	// Default: ","
	CSVSeparator string `yaml:"csv_separator"`

	// DecimalSeparator is written between integer and fractional digits.
	// Default: "."
	DecimalSeparator string `yaml:"decimal_separator"`

	// ThousandsSeparator groups the integer digits of prices.
	// Default: ","
	ThousandsSeparator string `yaml:"thousands_separator"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		CSVSeparator:       DefaultCSVSeparator,
		DecimalSeparator:   DefaultDecimalSeparator,
		ThousandsSeparator: DefaultThousandsSeparator,
	}
}

// FieldRune returns the field separator as a rune.
func (s Settings) FieldRune() rune {
	r, _ := utf8.DecodeRuneInString(s.CSVSeparator)
	return r
}

// Validate checks that the settings can produce files that parse back.
func (s Settings) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"csv_separator", s.CSVSeparator},
		{"decimal_separator", s.DecimalSeparator},
		{"thousands_separator", s.ThousandsSeparator},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) != 1 {
			return fmt.Errorf("%s must be exactly one character, got %q", f.name, f.value)
		}
	}

	for _, f := range fields[1:] {
		if r, _ := utf8.DecodeRuneInString(f.value); isNumberRune(r) {
			return fmt.Errorf("%s %q is part of number notation", f.name, f.value)
		}
	}

	if s.DecimalSeparator == s.ThousandsSeparator {
		return fmt.Errorf("decimal_separator and thousands_separator must differ (both %q)", s.DecimalSeparator)
	}

	// encoding/csv rejects these as delimiters.
	switch r := s.FieldRune(); r {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("csv_separator %q cannot be used as a field separator", s.CSVSeparator)
	}

	return nil
}

// isNumberRune reports whether r can appear in a plain number, which rules it
// out as a decimal or thousands separator.
func isNumberRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '+', r == '-', r == 'e', r == 'E':
		return true
	}
	return false
}

// =============================================================================
// SETTINGS LOADING / SAVING
// =============================================================================

// LoadSettings reads the settings file and merges defaults into any key that
// is absent.
//
// RETURNS:
//   - Settings that are always usable.
//   - A non-nil error when the file existed but could not be read, parsed or
//     validated. The returned settings are then the defaults, and the caller
//     decides whether to warn or stop. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings file: %w", err)
	}

	applySettingsDefaults(&settings)

	if err := settings.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("invalid settings file: %w", err)
	}

	return settings, nil
}

// applySettingsDefaults fills in any unset keys.
func applySettingsDefaults(s *Settings) {
	defaults := DefaultSettings()
	if s.CSVSeparator == "" {
		s.CSVSeparator = defaults.CSVSeparator
	}
	if s.DecimalSeparator == "" {
		s.DecimalSeparator = defaults.DecimalSeparator
	}
	if s.ThousandsSeparator == "" {
		s.ThousandsSeparator = defaults.ThousandsSeparator
	}
}

// SaveSettings validates and writes the settings file.
func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// =============================================================================
// SOURCES FILE STRUCTURE
// =============================================================================

// SourcesFile lists the price lists of one comparison run, in the order they
// are folded. Order matters: on equal prices the earlier file wins.
type SourcesFile struct {
	// Sources are the files to compare.
	Sources []SourceEntry `yaml:"sources"`

	// MaxConcurrency bounds how many files are read at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// SourceEntry is the column mapping for one file, as written by the user.
// validation.NewSourceMapping turns it into a types.SourceMapping.
type SourceEntry struct {
	// File is the path of the price list. Relative paths are resolved
	// against the directory of the sources file.
	File string `yaml:"file" validate:"required"`

	// Sheet selects a worksheet. Empty means the first one.
	Sheet string `yaml:"sheet,omitempty"`

	// Delimiter overrides csv_separator for delimited price lists.
	Delimiter string `yaml:"delimiter,omitempty" validate:"delimiter"`

	// HeaderRow is the 0-based index of the header row.
	HeaderRow int `yaml:"header_row" validate:"gte=0"`

	ItemColumn        string `yaml:"item_column" validate:"required"`
	DescriptionColumn string `yaml:"description_column" validate:"required"`
	PriceColumn       string `yaml:"price_column" validate:"required"`
}

// LoadSources reads a sources file.
//
// PARAMETERS:
//   - path: The path to the YAML sources file.
//
// RETURNS:
//   - The parsed file with defaults applied and file paths resolved.
//   - An error if the file cannot be read or parsed, or lists no sources.
func LoadSources(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources SourcesFile
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(sources.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}

	if sources.MaxConcurrency <= 0 {
		sources.MaxConcurrency = DefaultMaxConcurrency
	}

	baseDir := filepath.Dir(path)
	for i := range sources.Sources {
		file := sources.Sources[i].File
		if file != "" && !filepath.IsAbs(file) {
			sources.Sources[i].File = filepath.Join(baseDir, file)
		}
	}

	return &sources, nil
}
