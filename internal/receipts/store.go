// Package receipts stores receipt files beside the database.
package receipts

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DirName is the default receipts directory name.
const DirName = "Receipts"

// AllowedExtensions lists the receipt file types accepted.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf"}

// Receipt errors.
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrNotAFile           = errors.New("not a regular file")
	ErrOutsideReceiptsDir = errors.New("receipt path escapes the receipts directory")
)

// Store keeps receipt files in a single directory under generated names.
type Store struct {
	dir string
}

// ValidationResult describes whether a file can be attached as a receipt.
type ValidationResult struct {
	Error    string
	FileSize int64
	Valid    bool
}

// NewStore creates the receipts directory if needed.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("receipts directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receipts directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute receipts directory.
func (s *Store) Dir() string {
	return s.dir
}

// IsAllowed reports whether path has a receipt extension (case-insensitive).
func IsAllowed(path string) bool {
	return slices.Contains(AllowedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Validate checks that path exists, is a regular file and has an allowed
// extension.
func Validate(path string) ValidationResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ValidationResult{Error: ErrFileNotFound.Error()}
		}
		return ValidationResult{Error: err.Error()}
	}
	if !info.Mode().IsRegular() {
		return ValidationResult{Error: ErrNotAFile.Error()}
	}
	if !IsAllowed(path) {
		return ValidationResult{
			Error:    fmt.Sprintf("%s: allowed types are %s", ErrUnsupportedType, strings.Join(AllowedExtensions, ", ")),
			FileSize: info.Size(),
		}
	}
	return ValidationResult{Valid: true, FileSize: info.Size()}
}

// Save copies sourcePath into the store and returns the new file name.
func (s *Store) Save(sourcePath string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, sourcePath)
		}
		return "", fmt.Errorf("failed to stat receipt: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, sourcePath)
	}

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if !slices.Contains(AllowedExtensions, ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	name := uuid.NewString() + ext
	if err := copyInto(sourcePath, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save receipt: %w", err)
	}

	slog.Info("Saved receipt", "file", name, "source", filepath.Base(sourcePath), "size", info.Size())
	return name, nil
}

// Path returns the absolute path of a stored receipt. An empty name gives an
// empty path.
func (s *Store) Path(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	full := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrOutsideReceiptsDir, name)
	}
	return full, nil
}

// Delete removes a stored receipt and reports whether a file was removed.
func (s *Store) Delete(name string) bool {
	path, err := s.Path(name)
	if err != nil || path == "" {
		return false
	}
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to delete receipt", "file", name, "error", err)
		}
		return false
	}
	slog.Info("Deleted receipt", "file", name)
	return true
}

// Exists reports whether a stored receipt is present.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil || path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func copyInto(src, dst string) error {
	// #nosec G304 - src is a user-selected receipt that was stat'ed above
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 - dst is inside the receipts directory
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
