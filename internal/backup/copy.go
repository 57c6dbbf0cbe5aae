package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// dataDirName is the subdirectory of a snapshot that mirrors the tracked
// items' absolute paths.
const dataDirName = "data"

// mirrorPath maps an absolute tracked path to its location inside the
// snapshot's data directory.
func mirrorPath(snapDir, trackedPath string) string {
	rel := strings.TrimPrefix(filepath.Clean(trackedPath), string(filepath.Separator))
	return filepath.Join(snapDir, dataDirName, rel)
}

// copyFile copies a regular file, creating parent directories and preserving
// the source mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// copyDir recursively copies a directory tree. Symlinks and other irregular
// entries are skipped.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0700)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

// copyPath dispatches on the source's kind.
func copyPath(src, dst string, isDir bool) error {
	if isDir {
		return copyDir(src, dst)
	}
	return copyFile(src, dst)
}

// treeSize returns the total size in bytes of all regular files under path.
func treeSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
