//go:build integration
// +build integration

package integration

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loghoist/loghoist/upload/chunking"
)

func Test_chunking(t *testing.T) {
	checkTool("split")
	t.Parallel()

	testCases := []struct {
		name       string
		splitFound bool
	}{
		{
			name:       "split installed=true",
			splitFound: true,
		},
		{
			name:       "split installed=false",
			splitFound: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Given
			sourcePath := filepath.Join(t.TempDir(), "chunking-test.log")
			payload := make([]byte, 1330*1024)
			_, err := rand.Read(payload)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(sourcePath, payload, 0644))

			splitter := chunking.NewSplitter(logger, env.NewRepository(), dependencyCheckerStub{found: tc.splitFound})
			outputDir := filepath.Join(t.TempDir(), "parts")

			// When
			parts, err := splitter.Split(sourcePath, outputDir, 512*1024)

			// Then
			require.NoError(t, err)
			assert.Len(t, parts, 3)

			var reassembled []byte
			for _, part := range parts {
				content, err := os.ReadFile(part)
				require.NoError(t, err)
				reassembled = append(reassembled, content...)
			}
			assert.Equal(t, checksumOf(payload), checksumOf(reassembled))
		})
	}
}

// Test_chunkingAgreesAcrossImplementations splits the same file with the
// split binary and with the native fallback and expects identical parts.
func Test_chunkingAgreesAcrossImplementations(t *testing.T) {
	checkTool("split")
	t.Parallel()

	// Given
	sourcePath := filepath.Join(t.TempDir(), "agreement-test.log")
	payload := make([]byte, 777*1024)
	_, err := rand.Read(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sourcePath, payload, 0644))

	binarySplitter := chunking.NewSplitter(logger, env.NewRepository(), dependencyCheckerStub{found: true})
	nativeSplitter := chunking.NewSplitter(logger, env.NewRepository(), dependencyCheckerStub{found: false})
	binaryDir := filepath.Join(t.TempDir(), "binary")
	nativeDir := filepath.Join(t.TempDir(), "native")

	// When
	binaryParts, err := binarySplitter.Split(sourcePath, binaryDir, 256*1024)
	require.NoError(t, err)
	nativeParts, err := nativeSplitter.Split(sourcePath, nativeDir, 256*1024)
	require.NoError(t, err)

	// Then
	require.Len(t, nativeParts, len(binaryParts))
	for i := range binaryParts {
		assert.Equal(t, filepath.Base(binaryParts[i]), filepath.Base(nativeParts[i]))

		binaryContent, err := os.ReadFile(binaryParts[i])
		require.NoError(t, err)
		nativeContent, err := os.ReadFile(nativeParts[i])
		require.NoError(t, err)
		assert.Equal(t, checksumOf(binaryContent), checksumOf(nativeContent))
	}
}
