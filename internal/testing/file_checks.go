package testing

import (
	"fmt"
	"os"
)

// FileChecker allows chaining multiple checks on a file path.
type FileChecker struct {
	Path   string
	Checks []func(string) error
}

// NewFileChecker creates a FileChecker for the given path.
func NewFileChecker(path string) *FileChecker {
	return &FileChecker{Path: path, Checks: []func(string) error{}}
}

// Check runs all checks on the FileChecker's path, aggregating failures.
func (fc *FileChecker) Check() error {
	errors := MultiError{}
	for _, check := range fc.Checks {
		if err := check(fc.Path); err != nil {
			AppendErr(&errors, err)
		}
	}

	if len(errors) == 0 {
		return nil
	}

	return errors
}

// IsDir adds a check that the path is a directory.
func (fc *FileChecker) IsDir() *FileChecker {
	fc.Checks = append(fc.Checks, func(path string) error {
		info, err := getInfo(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("expected directory but not a directory: %s", path)
		}
		return nil
	})
	return fc
}

// IsFile adds a check that the path is a regular file.
func (fc *FileChecker) IsFile() *FileChecker {
	fc.Checks = append(fc.Checks, func(path string) error {
		info, err := getInfo(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("expected file but is a directory: %s", path)
		}
		return nil
	})
	return fc
}

// NotExists adds a check that nothing exists at the path.
func (fc *FileChecker) NotExists() *FileChecker {
	fc.Checks = append(fc.Checks, func(path string) error {
		_, err := os.Lstat(path)
		if err == nil {
			return fmt.Errorf("expected %s not to exist, but it does", path)
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("lstat %s: %w", path, err)
	})
	return fc
}

// SizeEquals adds a check that the file at the path has the given size.
func (fc *FileChecker) SizeEquals(size int64) *FileChecker {
	fc.Checks = append(fc.Checks, func(path string) error {
		info, err := getInfo(path)
		if err != nil {
			return err
		}
		if info.Size() != size {
			return fmt.Errorf("size mismatch for %s: want %d got %d", path, size, info.Size())
		}
		return nil
	})
	return fc
}

// Content adds a check that the file at the path has the specified content.
func (fc *FileChecker) Content(content string) *FileChecker {
	fc.Checks = append(fc.Checks, func(path string) error {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got := string(b)
		if got != content {
			return fmt.Errorf("file %s content mismatch\nwant:\n%q\n\ngot:\n%q", path, content, got)
		}
		return nil
	})
	return fc
}

func getInfo(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("path does not exist: %s", path)
		}
		return nil, fmt.Errorf("lstat %s: %w", path, err)
	}
	return info, nil
}
