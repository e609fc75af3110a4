package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempLog(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUploadAsGistMissingFilePath(t *testing.T) {
	uploader := newTestUploader(&fakeCommandFactory{}, t.TempDir())

	_, err := uploader.UploadAsGist(Options{})

	var missingOption *MissingOptionError
	require.ErrorAs(t, err, &missingOption)
	assert.Equal(t, "FilePath", missingOption.Option)
}

func TestUploadAsGistSuccess(t *testing.T) {
	path := writeTempLog(t, "test.log", "log line\n")
	factory := fakeCommandFactory{responses: []fakeResponse{
		{argsPrefix: "gh gist create", stdout: "https://gist.github.com/octocat/abc123\n"},
	}}
	uploader := newTestUploader(&factory, t.TempDir())

	result, err := uploader.UploadAsGist(Options{FilePath: path, IsPublic: true})

	require.NoError(t, err)
	assert.Equal(t, UploadTypeGist, result.Type)
	assert.Equal(t, "https://gist.github.com/octocat/abc123", result.URL)
	assert.Equal(t, GenerateGistFileName(path), result.FileName)
	assert.True(t, result.IsPublic)
	assert.False(t, result.DryMode)

	calls := factory.callsWithPrefix("gh gist create")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "--public")
	assert.Contains(t, calls[0], fmt.Sprintf("--filename %s", GenerateGistFileName(path)))
}

func TestUploadAsGistPrivateByDefault(t *testing.T) {
	path := writeTempLog(t, "test.log", "log line\n")
	factory := fakeCommandFactory{responses: []fakeResponse{
		{argsPrefix: "gh gist create", stdout: "https://gist.github.com/octocat/abc123\n"},
	}}
	uploader := newTestUploader(&factory, t.TempDir())

	result, err := uploader.UploadAsGist(Options{FilePath: path})

	require.NoError(t, err)
	assert.False(t, result.IsPublic)
	calls := factory.callsWithPrefix("gh gist create")
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0], "--public")
}

func TestUploadAsGistDetectsSilentFailure(t *testing.T) {
	tests := []struct {
		name       string
		stdout     string
		stderr     string
		wantOutput string
	}{
		{
			name:       "empty stdout with diagnostic",
			stdout:     "",
			stderr:     "HTTP 502: Bad Gateway",
			wantOutput: "HTTP 502: Bad Gateway",
		},
		{
			name:       "whitespace only stdout",
			stdout:     "   \n",
			stderr:     "",
			wantOutput: "Unknown error",
		},
		{
			name:       "bare host prefix is not a gist URL",
			stdout:     "https://gist.github.com/\n",
			stderr:     "",
			wantOutput: "Unknown error",
		},
		{
			name:       "unrelated output",
			stdout:     "something went wrong\n",
			stderr:     "post failed",
			wantOutput: "post failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempLog(t, "test.log", "log line\n")
			// gh exits zero in all of these, the URL check alone must catch them
			factory := fakeCommandFactory{responses: []fakeResponse{
				{argsPrefix: "gh gist create", stdout: tt.stdout, stderr: tt.stderr},
			}}
			uploader := newTestUploader(&factory, t.TempDir())

			result, err := uploader.UploadAsGist(Options{FilePath: path})

			require.Nil(t, result)
			var gistErr *GistCreationFailedError
			require.ErrorAs(t, err, &gistErr)
			assert.Equal(t, tt.wantOutput, gistErr.Output)
		})
	}
}

func TestUploadAsGistCommandFailure(t *testing.T) {
	path := writeTempLog(t, "test.log", "log line\n")
	factory := fakeCommandFactory{responses: []fakeResponse{
		{argsPrefix: "gh gist create", stderr: "gh: Not Found (HTTP 404)", err: errors.New("exit status 1")},
	}}
	uploader := newTestUploader(&factory, t.TempDir())

	_, err := uploader.UploadAsGist(Options{FilePath: path})

	var gistErr *GistCreationFailedError
	require.ErrorAs(t, err, &gistErr)
	assert.Equal(t, "gh: Not Found (HTTP 404)", gistErr.Output)
}

func TestIsValidGistURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://gist.github.com/octocat/abc123", want: true},
		{url: "https://gist.github.com/", want: false},
		{url: "", want: false},
		{url: "https://github.com/octocat/abc123", want: false},
		{url: "gist.github.com/octocat/abc123", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidGistURL(tt.url), tt.url)
	}
}
