package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Manifest tracks the snapshots currently on disk.
type Manifest struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	Keep        int       `json:"keep"`
	Snapshots   []string  `json:"snapshots"`
	Latest      string    `json:"latest"`
}

func defaultManifest(keep int) Manifest {
	return Manifest{
		Version:   1,
		Keep:      keep,
		Snapshots: []string{},
	}
}

func readManifest(path string, keep int) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return defaultManifest(keep), err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return defaultManifest(keep), err
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest) error {
	m.GeneratedAt = time.Now().UTC()
	path := filepath.Join(basePath, "manifest.json")
	tmp := path + ".tmp"
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
