package config

import (
	"call-blocks/errors"
	"call-blocks/models"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// rosterFile is the YAML shape of a roster file.
type rosterFile struct {
	SDRs []models.SDR `yaml:"sdrs"`
}

// DefaultRoster is used when no roster file is configured.
func DefaultRoster() models.Roster {
	return models.Roster{
		{ID: "marine", Label: "Marine"},
		{ID: "ludovic", Label: "Ludovic"},
		{ID: "sylvain", Label: "Sylvain"},
	}
}

// LoadRoster reads a YAML roster file from path.
func LoadRoster(path string) (models.Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read roster %s: %w", path, err)
	}
	return ParseRoster(data)
}

// ParseRoster unmarshals YAML bytes into a validated roster.
// IDs are lowercased and must be unique; missing labels default to the title-cased ID.
func ParseRoster(data []byte) (models.Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse roster: %w", err)
	}

	title := cases.Title(language.French)
	seen := make(map[models.SDRID]bool)
	var errs []string

	if len(f.SDRs) == 0 {
		errs = append(errs, "at least one sdr is required")
	}
	for i := range f.SDRs {
		s := &f.SDRs[i]
		s.ID = models.SDRID(strings.ToLower(strings.TrimSpace(string(s.ID))))
		s.Label = strings.TrimSpace(s.Label)

		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("sdrs[%d].id is required", i))
			continue
		}
		if models.ViewFilter(s.ID) == models.ViewAll {
			errs = append(errs, fmt.Sprintf("sdrs[%d].id %q is reserved", i, s.ID))
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Sprintf("sdrs[%d].id %q is duplicated", i, s.ID))
		}
		seen[s.ID] = true

		if s.Label == "" {
			s.Label = title.String(string(s.ID))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidRoster, strings.Join(errs, "; "))
	}
	return models.Roster(f.SDRs), nil
}
