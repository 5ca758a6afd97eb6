package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollectSources lists the PDF files of dir in ascending filename order.
// The suffix match is case-insensitive, subdirectories are not descended
// into, and non-regular files are ignored. An empty directory yields an
// empty slice, not an error; the caller decides whether that is fatal.
func CollectSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	// ReadDir already sorts, but the output page order depends on this.
	sort.Strings(files)
	return files, nil
}
