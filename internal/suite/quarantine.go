package suite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Quarantine collects failing outputs under Dir.
type Quarantine struct {
	Dir string
}

// Prepare creates the quarantine directory if it is missing.
func (q Quarantine) Prepare() error {
	if err := os.MkdirAll(q.Dir, 0o755); err != nil {
		return fmt.Errorf("create quarantine dir: %w", err)
	}
	return nil
}

// Keep moves src into the quarantine under name. It reports false without
// error when src does not exist.
func (q Quarantine) Keep(src, name string) (string, bool, error) {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}

	dest := filepath.Join(q.Dir, name)
	if err := moveFile(src, dest); err != nil {
		return "", false, fmt.Errorf("quarantine %s: %w", src, err)
	}
	return dest, true, nil
}

// moveFile renames src to dest, falling back to copy and remove when the
// two are on different filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "negcheck-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	return os.Remove(src)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
