package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrFolderExists is returned by Write when the book folder already exists
// and the policy does not allow overwriting.
var ErrFolderExists = errors.New("output folder already exists")

// OverwritePolicy decides what Write does with an existing book folder.
type OverwritePolicy int

const (
	// RefuseExisting fails when the book folder exists.
	RefuseExisting OverwritePolicy = iota
	// OverwriteFiles rewrites the layout's files in place and leaves any
	// other file in the folder untouched.
	OverwriteFiles
)

// Write puts layout under outputDir and returns the path of the book
// folder. Every file is written to a temporary file and renamed into
// place, so a file is either complete or absent. Files written before a
// failure are left on disk.
func Write(layout *Layout, outputDir string, policy OverwritePolicy) (string, error) {
	dir := filepath.Join(outputDir, layout.Folder)
	if _, err := os.Stat(dir); err == nil {
		if policy != OverwriteFiles {
			return dir, fmt.Errorf("%w: %s", ErrFolderExists, dir)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return dir, fmt.Errorf("stat output folder: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, fmt.Errorf("create output folder: %w", err)
	}
	for _, note := range layout.Notes() {
		if err := writeFileAtomic(filepath.Join(dir, note.Name), note.Content); err != nil {
			return dir, err
		}
	}

	if len(layout.Images) == 0 {
		return dir, nil
	}
	imagesDir := filepath.Join(dir, ImagesDir)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return dir, fmt.Errorf("create images folder: %w", err)
	}
	for _, img := range layout.Images {
		if err := writeFileAtomic(filepath.Join(imagesDir, img.Name), img.Data); err != nil {
			return dir, err
		}
	}
	return dir, nil
}

func writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(name), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(name), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(name), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(name), err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(name), err)
	}
	return nil
}
