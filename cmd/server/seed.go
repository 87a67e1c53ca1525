package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

type statusSeedYAML struct {
	Statuses []usecase.StatusSeed `yaml:"statuses"`
}

// loadStatusSeeds reads the status list from path, or returns the built-in
// defaults when path is empty. The file holds either a top-level list or a
// "statuses" key.
func loadStatusSeeds(path string) ([]usecase.StatusSeed, error) {
	if path == "" {
		return usecase.DefaultStatuses, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("seed file not found: %s", path)
		}
		return nil, err
	}
	return parseStatusSeeds(b)
}

func parseStatusSeeds(b []byte) ([]usecase.StatusSeed, error) {
	var doc statusSeedYAML
	if err := yaml.Unmarshal(b, &doc); err == nil && len(doc.Statuses) > 0 {
		return doc.Statuses, nil
	}
	var list []usecase.StatusSeed
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	if len(list) == 0 {
		return nil, errors.New("no statuses to seed")
	}
	return list, nil
}
