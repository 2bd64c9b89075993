package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every template file under a directory.
const DefaultPattern = "**/*.{xlsx,xlsm,yaml,yml}"

// File is a discovered template file.
type File struct {
	Path    string // relative to the discovery root
	Format  Format
	Size    int64
	ModTime string
}

// Discover lists template files under root matching pattern, sorted by path.
// Office lock files ("~$book.xlsx") and directories are skipped.
func Discover(root, pattern string) ([]File, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid template pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("error evaluating pattern %s: %w", pattern, err)
	}

	var files []File
	for _, match := range matches {
		if skip, _ := doublestar.Match("**/~$*", match); skip {
			continue
		}
		info, err := os.Stat(filepath.Join(root, match))
		if err != nil || info.IsDir() {
			continue
		}
		format, err := DetectFormat(match)
		if err != nil {
			continue
		}
		files = append(files, File{
			Path:    match,
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime().Format("2006-01-02 15:04"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
