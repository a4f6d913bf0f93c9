package fs

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/aretw0/patchlore/pkg/core"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "patchlore-tmp-"
)

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over filename, so readers never see a partial file.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "failed to write to temp file")
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "failed to sync temp file")
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return errors.Wrap(err, "failed to chmod temp file")
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return errors.Wrapf(err, "failed to rename temp file to %s", filename)
	}

	return nil
}

// WriteExport stores an export result in dir under its suggested filename
// and returns the written path. The directory is created if missing.
func WriteExport(dir string, res core.ExportResult) (string, error) {
	if res.Filename == "" {
		return "", core.WithCode(errors.New("export result has no filename"), core.CodeMissingParameter)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", core.WithCode(errors.Wrapf(err, "failed to create output directory %s", dir), core.CodeFileWriteFailed)
	}

	path := filepath.Join(dir, filepath.Base(res.Filename))
	if err := WriteFileAtomic(path, []byte(res.Content), 0o644); err != nil {
		return "", core.WithCode(err, core.CodeFileWriteFailed)
	}
	return path, nil
}
