// Package fileutil provides helpers for working with files and folders
// through a swappable virtual file system.
package fileutil

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Vfs is the virtual file system abstraction used by all helpers.
// Tests may replace it with an in-memory implementation.
var Vfs afero.Fs = afero.NewOsFs()

// FolderExists ensures that folder exists
func FolderExists(dir string) error {
	if dir == "" {
		return errors.New("invalid parameter: dir")
	}

	stat, err := Vfs.Stat(dir)
	if err != nil {
		return errors.WithStack(err)
	}
	if !stat.IsDir() {
		return errors.Errorf("not a folder: %q", dir)
	}

	return nil
}

// FileExists ensures that file exists
func FileExists(file string) error {
	if file == "" {
		return errors.New("invalid parameter: file")
	}

	stat, err := Vfs.Stat(file)
	if err != nil {
		return errors.WithStack(err)
	}
	if stat.IsDir() {
		return errors.Errorf("not a file: %q", file)
	}

	return nil
}

// CreateFolder creates the folder, including missing parents,
// if it does not already exist.
func CreateFolder(dir string) error {
	if FolderExists(dir) == nil {
		return nil
	}
	if err := Vfs.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
