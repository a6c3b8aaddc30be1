// Package scan enumerates the media files a scan will classify. The walker
// owns directory traversal and the hidden-file policy; the grouping engine
// itself never touches the directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/mde/internal/hasher"
)

// Options control one enumeration pass.
type Options struct {
	// Recursive descends into subdirectories; otherwise only the root's
	// immediate children are listed.
	Recursive bool
	// IncludeHidden admits dotfiles and descends into dot-directories.
	// The root itself is always admitted even if its name starts with a
	// dot.
	IncludeHidden bool
	// Media restricts which file types are listed.
	Media MediaFilter
}

// ListFiles walks the given roots and returns the absolute path and size of
// every file passing the hidden-file policy and media filter. A missing root
// is a hard error; everything below it is best-effort.
func ListFiles(roots []string, opts Options) ([]hasher.Input, error) {
	if opts.Media == "" {
		opts.Media = MediaAll
	}

	var files []hasher.Input
	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}
		if _, err := os.Stat(absRoot); err != nil {
			return nil, fmt.Errorf("path not found: %s", root)
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal.
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			hidden := path != absRoot && isHidden(d.Name())

			if d.IsDir() {
				if path != absRoot && !opts.Recursive {
					return filepath.SkipDir
				}
				if hidden && !opts.IncludeHidden {
					return filepath.SkipDir
				}
				return nil
			}

			if hidden && !opts.IncludeHidden {
				return nil
			}
			if !opts.Media.matches(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			files = append(files, hasher.Input{Path: path, Size: info.Size()})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
