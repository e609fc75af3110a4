package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/docker/go-units"

	"github.com/loghoist/loghoist/upload/chunking"
)

// DetermineStrategy classifies a file by size: gist up to GistMaxSizeBytes,
// repository above that, with splitting once RepoChunkSizeBytes is exceeded.
func DetermineStrategy(path string) (StrategyDecision, error) {
	size, err := FileSizeInBytes(path)
	if err != nil {
		return StrategyDecision{}, err
	}

	if size <= GistMaxSizeBytes {
		return StrategyDecision{
			Type:     UploadTypeGist,
			FileSize: size,
			Reason: fmt.Sprintf("%s is within the %s gist limit",
				units.BytesSize(float64(size)), units.BytesSize(float64(GistMaxSizeBytes))),
		}, nil
	}

	return StrategyDecision{
		Type:       UploadTypeRepo,
		FileSize:   size,
		NeedsSplit: size > RepoChunkSizeBytes,
		NumChunks:  chunking.NumChunks(size, RepoChunkSizeBytes),
		ChunkSize:  RepoChunkSizeBytes,
		Reason: fmt.Sprintf("%s exceeds the %s gist limit",
			units.BytesSize(float64(size)), units.BytesSize(float64(GistMaxSizeBytes))),
	}, nil
}

// FileExists reports whether path exists. Any stat failure other than
// non-existence is returned as an error.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FileSizeInBytes returns the size of a regular file. Missing paths and
// non-regular files (directories, devices) yield a FileNotFoundError.
func FileSizeInBytes(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, &FileNotFoundError{Path: path}
		}
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, &FileNotFoundError{Path: path}
	}
	return info.Size(), nil
}
