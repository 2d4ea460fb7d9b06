// Package seed provides the fixed session list the store starts with.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sessioncal/internal/model"
)

//go:embed sessions.yaml
var defaultSeed []byte

const dateLayout = "2006-01-02"

// entry is the on-disk shape of one seeded session. Dates are plain
// YYYY-MM-DD strings and are interpreted in time.Local.
type entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	StartTime   string `yaml:"start_time"`
	EndTime     string `yaml:"end_time"`
}

// Default returns the built-in seed collection.
func Default() []model.Session {
	sessions, err := Parse(defaultSeed)
	if err != nil {
		// The embedded file is covered by tests.
		panic("seed: embedded sessions.yaml is invalid: " + err.Error())
	}
	return sessions
}

// Load reads a seed file from path.
func Load(path string) ([]model.Session, error) {
	if path == "" {
		return nil, errors.New("seed: path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list of sessions, preserving order.
func Parse(data []byte) ([]model.Session, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	out := make([]model.Session, 0, len(entries))
	for i, e := range entries {
		d, err := time.ParseInLocation(dateLayout, e.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("seed: entry %d (%q): bad date: %w", i, e.Name, err)
		}
		out = append(out, model.Session{
			Name:        e.Name,
			Description: e.Description,
			Date:        d,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
		})
	}
	return out, nil
}
