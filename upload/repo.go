package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/docker/go-units"

	"github.com/loghoist/loghoist/command/ghcommand"
	"github.com/loghoist/loghoist/upload/chunking"
	"github.com/loghoist/loghoist/upload/compression"
)

const (
	repoHost      = "https://github.com"
	defaultBranch = "main"
)

// UploadAsRepo publishes the file into a freshly created repository: it is
// staged into a scratch directory (split into parts above
// RepoChunkSizeBytes), committed on the main branch and pushed through a
// single gh repo create call. On any failure the scratch directory is
// removed and the causing error is returned as-is.
func (u *Uploader) UploadAsRepo(opts Options) (*Result, error) {
	if opts.FilePath == "" {
		return nil, &MissingOptionError{Option: "FilePath"}
	}

	repoName := GenerateRepoName(opts.FilePath)
	workDir, err := u.pathProvider.CreateTempDir(fmt.Sprintf("%s-%d", repoName, time.Now().Unix()))
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	result, err := u.uploadToNewRepo(opts, repoName, workDir)
	if err != nil {
		u.removeWorkDir(workDir)
		return nil, err
	}
	return result, nil
}

func (u *Uploader) uploadToNewRepo(opts Options, repoName string, workDir string) (*Result, error) {
	stagedPath := filepath.Join(workDir, NormalizeFileName(opts.FilePath))
	if err := copyFile(opts.FilePath, stagedPath); err != nil {
		return nil, fmt.Errorf("stage %s: %w", opts.FilePath, err)
	}

	if opts.Compress {
		compressedPath := stagedPath + compression.Extension
		compressor := compression.NewCompressor(u.logger, u.envRepo, compression.NewDependencyChecker(u.logger, u.envRepo))
		if err := compressor.Compress(stagedPath, compressedPath); err != nil {
			return nil, err
		}
		if err := u.fileManager.Remove(stagedPath); err != nil {
			return nil, fmt.Errorf("remove uncompressed copy: %w", err)
		}
		stagedPath = compressedPath
	}

	size, err := FileSizeInBytes(stagedPath)
	if err != nil {
		return nil, err
	}
	if size > RepoChunkSizeBytes {
		splitter := chunking.NewSplitter(u.logger, u.envRepo, chunking.NewDependencyChecker(u.logger, u.envRepo))
		parts, err := splitter.Split(stagedPath, workDir, RepoChunkSizeBytes)
		if err != nil {
			return nil, err
		}
		// only the parts go into the commit
		if err := u.fileManager.Remove(stagedPath); err != nil {
			return nil, fmt.Errorf("remove unchunked copy: %w", err)
		}
		u.logger.Infof("Split %s into %d parts", units.HumanSizeWithPrecision(float64(size), 3), len(parts))
	}

	gitOpts := &command.Opts{Dir: workDir}
	for _, cmd := range []command.Command{
		u.gitFactory.CreateInit(gitOpts),
		u.gitFactory.CreateRenameBranch(defaultBranch, gitOpts),
		u.gitFactory.CreateAddAll(gitOpts),
		u.gitFactory.CreateCommit(fmt.Sprintf("Add %s", filepath.Base(opts.FilePath)), gitOpts),
	} {
		if err := u.runCommand(cmd); err != nil {
			return nil, err
		}
	}

	login, err := u.currentLogin()
	if err != nil {
		return nil, err
	}

	u.logger.Infof("Creating %s repository %s...", visibility(opts.IsPublic), repoName)
	createCmd := u.ghFactory.CreateRepoCreate(ghcommand.RepoCreateParams{
		Name:        repoName,
		SourceDir:   workDir,
		Description: description(opts),
		Public:      opts.IsPublic,
		Push:        true,
	}, nil)
	if err := u.runCommand(createCmd); err != nil {
		return nil, err
	}

	return &Result{
		Type:           UploadTypeRepo,
		URL:            fmt.Sprintf("%s/%s/%s", repoHost, login, repoName),
		RepositoryName: repoName,
		IsPublic:       opts.IsPublic,
		WorkingDir:     workDir,
	}, nil
}

func (u *Uploader) currentLogin() (string, error) {
	cmd := u.ghFactory.CreateCurrentLogin(nil)
	u.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	login, err := cmd.RunAndReturnTrimmedOutput()
	if err != nil {
		return "", fmt.Errorf("resolve authenticated github user (%s): %w", cmd.PrintableCommandArgs(), err)
	}
	if login == "" {
		return "", fmt.Errorf("resolve authenticated github user: gh returned an empty login")
	}
	return login, nil
}

// removeWorkDir cleans up the scratch directory after a failed upload. It
// only warns on its own failures so the upload error stays the one reported.
func (u *Uploader) removeWorkDir(workDir string) {
	exists, err := u.pathChecker.IsPathExists(workDir)
	if err != nil {
		u.logger.Warnf("Failed to check scratch directory %s: %s", workDir, err)
		return
	}
	if !exists {
		return
	}
	if err := u.fileManager.RemoveAll(workDir); err != nil {
		u.logger.Warnf("Failed to remove scratch directory %s: %s", workDir, err)
	}
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(destination)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
