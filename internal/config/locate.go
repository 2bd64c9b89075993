package config

import (
	"os"
	"path/filepath"
)

// FileNames are the config file names looked up, in priority order.
var FileNames = []string{".evalpanelrc.json", ".evalpanelrc.yaml", ".evalpanelrc.yml"}

// FindConfigFile searches for a config file starting from startDir and
// climbing up the directory tree. It returns "" when none is found.
func FindConfigFile(startDir string) string {
	absPath, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	currentDir := absPath
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			// Reached filesystem root
			return ""
		}
		currentDir = parent
	}
}
