package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"igfeed/pkg/models"
)

// maxBackupSuffix bounds the -N suffixes tried for one stamp
const maxBackupSuffix = 100

// BackupDirName is the directory under the slot directory that holds backups
const BackupDirName = "backups"

// BackupStampFormat names each backup directory
const BackupStampFormat = "2006-01-02_15-04-05"

// SlotStore manages the fixed gallery slot files inside one directory
type SlotStore struct {
	dir string
}

// NewSlotStore creates a slot store, creating dir if it doesn't exist
func NewSlotStore(dir string) (*SlotStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &SlotStore{dir: dir}, nil
}

// Dir returns the slot directory path
func (s *SlotStore) Dir() string {
	return s.dir
}

// SlotPath returns the path of a 1-based slot
func (s *SlotStore) SlotPath(slot int) string {
	return filepath.Join(s.dir, models.SlotFileName(slot))
}

// Exists reports whether the slot file is present
func (s *SlotStore) Exists(slot int) bool {
	info, err := os.Stat(s.SlotPath(slot))
	return err == nil && info.Mode().IsRegular()
}

// Backup copies every existing slot file into backups/<stamp>/ and returns
// that directory. The directory is created even when no slot exists yet.
// A stamp already taken by an earlier backup gets a -2, -3, ... suffix.
func (s *SlotStore) Backup(stamp time.Time) (string, error) {
	backupDir, err := s.newBackupDir(stamp.Format(BackupStampFormat))
	if err != nil {
		return "", err
	}

	for slot := 1; slot <= models.MaxSlots; slot++ {
		if !s.Exists(slot) {
			continue
		}
		dst := filepath.Join(backupDir, models.SlotFileName(slot))
		if err := copyFilePreserving(s.SlotPath(slot), dst); err != nil {
			return backupDir, fmt.Errorf("failed to back up slot %d: %w", slot, err)
		}
	}

	return backupDir, nil
}

func (s *SlotStore) newBackupDir(name string) (string, error) {
	root := filepath.Join(s.dir, BackupDirName)
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	for n := 1; n <= maxBackupSuffix; n++ {
		dir := filepath.Join(root, name)
		if n > 1 {
			dir = fmt.Sprintf("%s-%d", dir, n)
		}
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create backup directory: %w", err)
		}
	}
	return "", fmt.Errorf("failed to create backup directory: %s taken %d times", name, maxBackupSuffix)
}

// WriteSlot replaces the slot content with the bytes read from r
func (s *SlotStore) WriteSlot(slot int, r io.Reader) (int64, error) {
	return s.WriteSlotFunc(slot, func(w io.Writer) (int64, error) {
		return io.Copy(w, r)
	})
}

// WriteSlotFunc lets fill stream into a temporary file which then replaces
// the slot by rename. On any error the previous slot content is untouched.
func (s *SlotStore) WriteSlotFunc(slot int, fill func(w io.Writer) (int64, error)) (int64, error) {
	if slot < 1 || slot > models.MaxSlots {
		return 0, fmt.Errorf("slot %d out of range 1..%d", slot, models.MaxSlots)
	}

	filename := s.SlotPath(slot)

	out, err := os.CreateTemp(s.dir, "."+models.SlotFileName(slot)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	n, err := fill(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return n, err
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return n, nil
}

// CopyFileToSlot copies a local image file into the slot
func (s *SlotStore) CopyFileToSlot(slot int, path string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open source image: %w", err)
	}
	defer src.Close()

	return s.WriteSlot(slot, src)
}

// copyFilePreserving copies src to dst keeping permission bits and mtime
func copyFilePreserving(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
