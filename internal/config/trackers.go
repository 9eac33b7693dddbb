package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrackerConfig binds a tracker to its chat and ledger table.
type TrackerConfig struct {
	Name string `yaml:"name"`
	// Kind selects the tracker profile; it defaults to Name.
	Kind    string `yaml:"kind"`
	ChatID  int64  `yaml:"chat_id"`
	TableID string `yaml:"table_id"`
}

type trackersFile struct {
	Trackers []TrackerConfig `yaml:"trackers"`
}

// LoadTrackers reads the trackers file at path.
func LoadTrackers(path string) ([]TrackerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trackers file %s: %w", path, err)
	}

	return ParseTrackers(data)
}

func ParseTrackers(data []byte) ([]TrackerConfig, error) {
	var f trackersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse trackers file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Trackers))

	for i := range f.Trackers {
		t := &f.Trackers[i]

		if t.Kind == "" {
			t.Kind = t.Name
		}

		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tracker[%d]: %w", i, err)
		}

		if _, ok := seen[t.Name]; ok {
			return nil, fmt.Errorf("tracker[%d]: duplicate name %q", i, t.Name)
		}

		seen[t.Name] = struct{}{}
	}

	if len(f.Trackers) == 0 {
		return nil, fmt.Errorf("no trackers configured")
	}

	return f.Trackers, nil
}

func (t TrackerConfig) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}

	if t.ChatID == 0 {
		return fmt.Errorf("chat_id is required")
	}

	if t.TableID == "" {
		return fmt.Errorf("table_id is required")
	}

	return nil
}
