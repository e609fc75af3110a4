package compression

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/klauspost/compress/zstd"
)

// Extension is appended to the staged file name when compression is on.
const Extension = ".zst"

// ZstdDependencyChecker ...
type ZstdDependencyChecker interface {
	CheckDependencies() bool
}

// DependencyChecker ...
type DependencyChecker struct {
	logger  log.Logger
	envRepo env.Repository
}

// NewDependencyChecker ...
func NewDependencyChecker(logger log.Logger, envRepo env.Repository) *DependencyChecker {
	return &DependencyChecker{
		logger:  logger,
		envRepo: envRepo,
	}
}

// CheckDependencies ...
func (dc *DependencyChecker) CheckDependencies() bool {
	return dc.checkDependency("zstd")
}

func (dc *DependencyChecker) checkDependency(binaryName string) bool {
	cmdFactory := command.NewFactory(dc.envRepo)
	cmd := cmdFactory.Create("which", []string{binaryName}, nil)
	dc.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	_, err := cmd.RunAndReturnTrimmedCombinedOutput()
	return err == nil
}

// Compressor writes zstd-compressed copies of single files.
type Compressor struct {
	logger                log.Logger
	envRepo               env.Repository
	zstdDependencyChecker ZstdDependencyChecker
}

// NewCompressor ...
func NewCompressor(logger log.Logger, envRepo env.Repository, zstdDependencyChecker ZstdDependencyChecker) *Compressor {
	return &Compressor{
		logger:                logger,
		envRepo:               envRepo,
		zstdDependencyChecker: zstdDependencyChecker,
	}
}

// Compress writes a zstd-compressed copy of sourcePath to destinationPath.
// The source file is left in place.
func (c *Compressor) Compress(sourcePath string, destinationPath string) error {
	haveZstd := c.zstdDependencyChecker.CheckDependencies()

	if !haveZstd {
		c.logger.Infof("Falling back to native implementation of zstd.")
		if err := c.compressWithGoLib(sourcePath, destinationPath); err != nil {
			return fmt.Errorf("compress file: %w", err)
		}
		return nil
	}

	c.logger.Infof("Using installed zstd binary")
	if err := c.compressWithBinary(sourcePath, destinationPath); err != nil {
		return fmt.Errorf("compress file: %w", err)
	}
	return nil
}

func (c *Compressor) compressWithBinary(sourcePath string, destinationPath string) error {
	cmdFactory := command.NewFactory(c.envRepo)

	/*
		zstd arguments:
		--threads=0: Use CPU count threads
		-q: No progress output, keep captured output to real diagnostics
		-f: Overwrite the destination if it exists
		-o: Output file
	*/
	zstdArgs := []string{
		"--threads=0",
		"-q",
		"-f",
		sourcePath,
		"-o", destinationPath,
	}

	cmd := cmdFactory.Create("zstd", zstdArgs, nil)

	c.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

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

func (c *Compressor) compressWithGoLib(sourcePath string, destinationPath string) error {
	in, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}

	out, err := os.OpenFile(destinationPath, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("create destination file: %w", err)
	}

	zstdWriter, err := zstd.NewWriter(out)
	if err != nil {
		_ = in.Close()
		_ = out.Close()
		return fmt.Errorf("create zstd writer: %w", err)
	}

	if _, err := io.Copy(zstdWriter, in); err != nil {
		_ = zstdWriter.Close()
		_ = in.Close()
		_ = out.Close()
		return fmt.Errorf("compress content: %w", err)
	}

	if err := zstdWriter.Close(); err != nil {
		_ = in.Close()
		_ = out.Close()
		return fmt.Errorf("close zstd writer: %w", err)
	}
	if err := in.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("close source file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}

	return nil
}
