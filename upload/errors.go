package upload

import "fmt"

// MissingOptionError is returned when a required option is empty.
type MissingOptionError struct {
	Option string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("required option %s is not set", e.Option)
}

// FileNotFoundError is returned when the upload source does not exist or
// is not a regular file.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// GistCreationFailedError is returned when gh did not produce a usable gist,
// including the case where it exits zero without printing a gist URL.
type GistCreationFailedError struct {
	// Output is the diagnostic text captured from gh, or "Unknown error"
	// when it printed nothing.
	Output string
}

func (e *GistCreationFailedError) Error() string {
	return fmt.Sprintf("gist creation failed: %s", e.Output)
}
