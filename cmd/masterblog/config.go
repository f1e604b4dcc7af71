package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// persistedConfig is the JSON structure stored in <data-dir>/config.json.
type persistedConfig struct {
	APIAddr   string `json:"api_addr,omitempty"`   // API listen address
	StoreFile string `json:"store_file,omitempty"` // Post store file name inside the data dir
}

// loadPersistedConfig reads config.json from the data directory if it
// exists. A missing file is not an error.
func loadPersistedConfig(dataDir string) (*persistedConfig, error) {
	path := filepath.Join(dataDir, "config.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg persistedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
