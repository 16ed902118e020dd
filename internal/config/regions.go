package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/power-demand-snapshot/internal/power"
)

// regionsFile is the YAML shape accepted by REGIONS_FILE:
//
//	regions:
//	  - name: Delhi
//	  - name: Jammu & Kashmir
type regionsFile struct {
	Regions []power.Region `yaml:"regions"`
}

// loadRegions returns the built-in table when path is empty, otherwise the
// regions listed in the YAML file at path, in file order.
func loadRegions(path string) ([]power.Region, error) {
	if path == "" {
		return power.DefaultRegions(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}

	var f regionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %w", err)
	}

	seen := make(map[string]string, len(f.Regions))
	for i, r := range f.Regions {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("regions file: entry %d has no name", i)
		}
		slug := power.FormatSlug(name)
		if prev, dup := seen[slug]; dup {
			return nil, fmt.Errorf("regions file: %q and %q share slug %q", prev, name, slug)
		}
		seen[slug] = name
		f.Regions[i].Name = name
	}

	return f.Regions, nil
}
