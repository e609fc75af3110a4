package upload

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/docker/go-units"

	"github.com/loghoist/loghoist/command/ghcommand"
	"github.com/loghoist/loghoist/command/gitcommand"
	"github.com/loghoist/loghoist/upload/mirror"
)

// Uploader publishes log files on GitHub, as gists or repositories.
type Uploader struct {
	envRepo      env.Repository
	logger       log.Logger
	pathProvider pathutil.PathProvider
	pathChecker  pathutil.PathChecker
	fileManager  fileutil.FileManager
	ghFactory    ghcommand.Factory
	gitFactory   gitcommand.Factory
}

// NewUploader ...
func NewUploader(
	envRepo env.Repository,
	logger log.Logger,
	cmdFactory command.Factory,
	pathProvider pathutil.PathProvider,
	pathChecker pathutil.PathChecker,
	fileManager fileutil.FileManager,
) *Uploader {
	return &Uploader{
		envRepo:      envRepo,
		logger:       logger,
		pathProvider: pathProvider,
		pathChecker:  pathChecker,
		fileManager:  fileManager,
		ghFactory:    ghcommand.NewFactory(cmdFactory),
		gitFactory:   gitcommand.NewFactory(cmdFactory),
	}
}

// UploadLog publishes the file described by opts. The size classifier picks
// gist or repository placement, explicit overrides win over the classifier,
// and a failed non-forced gist upload falls back to a repository upload.
func (u *Uploader) UploadLog(opts Options) (*Result, error) {
	if opts.Verbose {
		u.logger.EnableDebugLog(true)
	}

	if opts.FilePath == "" {
		return nil, &MissingOptionError{Option: "FilePath"}
	}
	exists, err := u.pathChecker.IsPathExists(opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", opts.FilePath, err)
	}
	if !exists {
		return nil, &FileNotFoundError{Path: opts.FilePath}
	}

	decision, err := DetermineStrategy(opts.FilePath)
	if err != nil {
		return nil, err
	}
	u.logger.Printf("File size: %s", units.HumanSizeWithPrecision(float64(decision.FileSize), 3))
	u.logger.Infof("Upload strategy: %s (%s)", decision.Type, decision.Reason)
	if decision.NeedsSplit {
		u.logger.Infof("File will be split into %d parts of %s", decision.NumChunks, units.BytesSize(float64(decision.ChunkSize)))
	}

	resolved := decision.Type
	switch {
	case opts.OnlyGist:
		resolved = UploadTypeGist
		if decision.Type != UploadTypeGist {
			u.logger.Warnf("Forcing a gist upload for a file above the gist limit")
		}
	case opts.OnlyRepository:
		resolved = UploadTypeRepo
		u.logger.Debugf("Repository upload forced")
	default:
		if opts.Auto {
			u.logger.Debugf("Auto mode, keeping the size-based decision")
		}
	}
	if opts.Compress && resolved == UploadTypeGist {
		u.logger.Debugf("Compression only applies to repository uploads, ignoring it")
	}

	if opts.DryMode {
		u.logger.Println()
		u.logger.Donef("Dry run, skipping the %s upload", resolved)
		return dryRunResult(opts, resolved), nil
	}

	var result *Result
	var uploadErr error
	switch resolved {
	case UploadTypeGist:
		result, uploadErr = u.UploadAsGist(opts)
		if uploadErr != nil && !opts.OnlyGist {
			u.logger.Warnf("Gist upload failed: %s", uploadErr)
			u.logger.Warnf("Falling back to a repository upload")
			result, uploadErr = u.UploadAsRepo(opts)
		}
	case UploadTypeRepo:
		result, uploadErr = u.UploadAsRepo(opts)
	}
	if uploadErr != nil {
		return nil, uploadErr
	}

	if opts.Verify {
		// private repositories are not anonymously readable, a HEAD probe
		// would report 404 for a perfectly fine upload
		if result.Type == UploadTypeRepo && !result.IsPublic {
			u.logger.Debugf("Skipping URL verification for a private repository")
		} else if err := u.verifyUploadURL(result.URL); err != nil {
			return nil, err
		}
	}

	if opts.MirrorBucket != "" {
		mirrorURL, err := mirror.Upload(context.Background(), mirror.Params{
			FilePath:        opts.FilePath,
			Bucket:          opts.MirrorBucket,
			KeyPrefix:       opts.MirrorKeyPrefix,
			Region:          opts.MirrorRegion,
			AccessKeyID:     opts.MirrorAccessKeyID,
			SecretAccessKey: opts.MirrorSecretAccessKey,
		}, u.logger)
		if err != nil {
			u.logger.Warnf("Mirror upload failed: %s", err)
		} else {
			result.MirrorURL = mirrorURL
			u.logger.Donef("Mirror copy: %s", mirrorURL)
		}
	}

	return result, nil
}

func dryRunResult(opts Options, resolved UploadType) *Result {
	result := Result{
		Type:     resolved,
		URL:      DryRunPlaceholderURL,
		IsPublic: opts.IsPublic,
		DryMode:  true,
	}
	switch resolved {
	case UploadTypeGist:
		result.FileName = GenerateGistFileName(opts.FilePath)
	case UploadTypeRepo:
		result.RepositoryName = GenerateRepoName(opts.FilePath)
	}
	return &result
}

func (u *Uploader) runCommand(cmd command.Command) error {
	u.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("command failed with exit status %d (%s):\n%w", exitErr.ExitCode(), cmd.PrintableCommandArgs(), errors.New(out))
		}
		return fmt.Errorf("executing command failed (%s): %w", cmd.PrintableCommandArgs(), err)
	}
	return nil
}
