package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"

	"github.com/loghoist/loghoist/command/ghcommand"
)

// gistHost is the URL prefix a successful gist creation must print.
const gistHost = "https://gist.github.com/"

// UploadAsGist publishes the file as a single gist. gh is known to exit zero
// while the creation actually failed upstream (observed as HTTP 502),
// printing no URL, so success is decided by validating the printed URL and
// never by the exit code alone.
func (u *Uploader) UploadAsGist(opts Options) (*Result, error) {
	if opts.FilePath == "" {
		return nil, &MissingOptionError{Option: "FilePath"}
	}

	fileName := GenerateGistFileName(opts.FilePath)
	file, err := u.fileManager.Open(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.FilePath, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			u.logger.Warnf("Failed to close %s: %s", opts.FilePath, err)
		}
	}()

	var stdout, stderr bytes.Buffer
	cmd := u.ghFactory.CreateGistCreate(ghcommand.GistCreateParams{
		FileName:    fileName,
		Description: description(opts),
		Public:      opts.IsPublic,
	}, &command.Opts{
		Stdin:  file,
		Stdout: &stdout,
		Stderr: &stderr,
	})

	u.logger.Infof("Creating %s gist %s...", visibility(opts.IsPublic), fileName)
	u.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	runErr := cmd.Run()
	gistURL := strings.TrimSpace(stdout.String())
	if runErr != nil || !isValidGistURL(gistURL) {
		return nil, &GistCreationFailedError{Output: diagnosticText(stderr.String())}
	}

	return &Result{
		Type:     UploadTypeGist,
		URL:      gistURL,
		FileName: fileName,
		IsPublic: opts.IsPublic,
	}, nil
}

func isValidGistURL(url string) bool {
	return strings.HasPrefix(url, gistHost) && len(url) > len(gistHost)
}

func diagnosticText(stderr string) string {
	text := strings.TrimSpace(stderr)
	if text == "" {
		return "Unknown error"
	}
	return text
}

func description(opts Options) string {
	if opts.Description != "" {
		return opts.Description
	}
	return fmt.Sprintf("Log file %s", filepath.Base(opts.FilePath))
}

func visibility(isPublic bool) string {
	if isPublic {
		return "public"
	}
	return "private"
}
