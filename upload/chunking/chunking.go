package chunking

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
)

// SplitDependencyChecker ...
type SplitDependencyChecker interface {
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
	return dc.checkDependency("split")
}

func (dc *DependencyChecker) checkDependency(binaryName string) bool {
	cmdFactory := command.NewFactory(dc.envRepo)
	cmd := cmdFactory.Create("which", []string{binaryName}, nil)
	dc.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	_, err := cmd.RunAndReturnTrimmedCombinedOutput()
	return err == nil
}

// Splitter cuts a file into fixed-size parts whose concatenation in name
// order reconstructs the original byte stream.
type Splitter struct {
	logger                 log.Logger
	envRepo                env.Repository
	splitDependencyChecker SplitDependencyChecker
}

// NewSplitter ...
func NewSplitter(logger log.Logger, envRepo env.Repository, splitDependencyChecker SplitDependencyChecker) *Splitter {
	return &Splitter{
		logger:                 logger,
		envRepo:                envRepo,
		splitDependencyChecker: splitDependencyChecker,
	}
}

// NumChunks returns how many chunkSize-byte parts a file of fileSize bytes
// splits into, at least 1.
func NumChunks(fileSize, chunkSize int64) int {
	if fileSize <= 0 || chunkSize <= 0 {
		return 1
	}
	return int((fileSize + chunkSize - 1) / chunkSize)
}

// SuffixLength returns the numeric suffix width used for part names. The
// width is 2 (part00, part01, ...) until more than 100 parts are needed,
// then grows so the suffix range is never exhausted.
func SuffixLength(numChunks int) int {
	length := len(strconv.Itoa(numChunks - 1))
	if length < 2 {
		return 2
	}
	return length
}

// Split cuts filePath into chunkSize-byte parts named
// <base>.part00, <base>.part01, ... inside outputDir, creating the directory
// when missing. Returns the part paths in concatenation order. On failure
// partial parts are left in outputDir, cleanup is the caller's job.
func (s *Splitter) Split(filePath string, outputDir string, chunkSize int64) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	numChunks := NumChunks(info.Size(), chunkSize)
	suffixLength := SuffixLength(numChunks)
	partPrefix := filepath.Base(filePath) + ".part"

	haveSplit := s.splitDependencyChecker.CheckDependencies()
	if !haveSplit {
		s.logger.Infof("Falling back to native file splitting.")
		err = s.splitWithGoLib(filePath, filepath.Join(outputDir, partPrefix), chunkSize, numChunks, suffixLength)
	} else {
		s.logger.Infof("Using installed split binary")
		err = s.splitWithBinary(filePath, filepath.Join(outputDir, partPrefix), chunkSize, suffixLength)
	}
	if err != nil {
		return nil, fmt.Errorf("split file: %w", err)
	}

	parts, err := s.partsInOrder(outputDir, partPrefix)
	if err != nil {
		return nil, err
	}
	if len(parts) != numChunks {
		return nil, fmt.Errorf("expected %d parts after splitting, found %d in %s", numChunks, len(parts), outputDir)
	}
	return parts, nil
}

func (s *Splitter) splitWithBinary(filePath string, partPrefix string, chunkSize int64, suffixLength int) error {
	cmdFactory := command.NewFactory(s.envRepo)

	/*
		split arguments:
		-b: Bytes per output file
		-d: Numeric suffixes (00, 01, ...) instead of alphabetic ones, so
			name order equals byte order (works on both GNU and BSD split)
		-a: Suffix length
	*/
	splitArgs := []string{
		"-b", strconv.FormatInt(chunkSize, 10),
		"-d",
		"-a", strconv.Itoa(suffixLength),
		filePath,
		partPrefix,
	}

	cmd := cmdFactory.Create("split", splitArgs, nil)

	s.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

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

func (s *Splitter) splitWithGoLib(filePath string, partPrefix string, chunkSize int64, numChunks int, suffixLength int) error {
	in, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			s.logger.Warnf("Failed to close %s: %s", filePath, err)
		}
	}()

	for index := 0; index < numChunks; index++ {
		partPath := fmt.Sprintf("%s%0*d", partPrefix, suffixLength, index)
		if err := writePart(in, partPath, chunkSize); err != nil {
			return err
		}
	}
	return nil
}

func writePart(in io.Reader, partPath string, chunkSize int64) error {
	out, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("create part file: %w", err)
	}
	if _, err := io.CopyN(out, in, chunkSize); err != nil && !errors.Is(err, io.EOF) {
		_ = out.Close()
		return fmt.Errorf("write part file %s: %w", partPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close part file %s: %w", partPath, err)
	}
	return nil
}

// partsInOrder lists the part files under outputDir in name order. The prefix
// comes from the file name being split, so it is matched literally, never as
// a pattern.
func (s *Splitter) partsInOrder(outputDir string, partPrefix string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("enumerate parts: %w", err)
	}

	var parts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), partPrefix) {
			continue
		}
		parts = append(parts, filepath.Join(outputDir, entry.Name()))
	}
	return parts, nil
}
