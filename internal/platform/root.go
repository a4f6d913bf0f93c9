package platform

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ConfigFileName is the optional project configuration file.
const ConfigFileName = ".patchlore.yaml"

// ErrRootNotFound is returned when no project root is found.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a project root.
// Indicators are a .patchlore.yaml file or a .git directory.
// It returns the absolute path of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) || hasFile(dir, ".git") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.WithHint(ErrRootNotFound, "run inside a git repository or create "+ConfigFileName)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
