package fetch

import (
	"fmt"
	"os"
	"path/filepath"
)

// CleanDirs removes stale files from earlier runs so date-stamped artifacts
// from different cycles never mix. Missing directories are created.
func CleanDirs(dirs ...string) error {
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create input dir %s: %w", dir, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("read input dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("remove stale input %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}
