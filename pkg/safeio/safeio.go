package safeio

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideBase is returned when a path resolves outside its base directory.
var ErrOutsideBase = errors.New("path is outside base directory")

// Contained verifies that target resolves to a location within baseDir.
// Both paths are made absolute first, so relative inputs are judged against
// the working directory. Manifest-supplied names such as "../../x.png" are
// rejected this way before anything is created on disk.
func Contained(baseDir, target string) error {
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return errors.New("failed to resolve base directory")
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return errors.New("failed to resolve target path")
	}

	rel, err := filepath.Rel(baseDirAbs, targetAbs)
	if err != nil {
		return errors.New("failed to compute relative path")
	}

	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return ErrOutsideBase
	}
	return nil
}

// ToSlashRel returns target relative to baseDir using forward slashes, or
// target unchanged when no relative form exists.
func ToSlashRel(baseDir, target string) string {
	rel, err := filepath.Rel(baseDir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
