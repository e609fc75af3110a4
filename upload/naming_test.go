package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFileName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "absolute path",
			path: "/home/user/test.log",
			want: "home-user-test.log",
		},
		{
			name: "repeated leading slashes",
			path: "///a/b.log",
			want: "a-b.log",
		},
		{
			name: "relative path",
			path: "build/output.log",
			want: "build-output.log",
		},
		{
			name: "bare file name",
			path: "test.log",
			want: "test.log",
		},
		{
			name: "empty",
			path: "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFileName(tt.path))
		})
	}
}

func TestNormalizeFileNameIsIdempotent(t *testing.T) {
	paths := []string{"/home/user/test.log", "///a/b.log", "already-normalized.log", "noext"}
	for _, path := range paths {
		once := NormalizeFileName(path)
		assert.Equal(t, once, NormalizeFileName(once))
	}
}

func TestGenerateRepoName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "log extension is dropped",
			path: "/home/user/test.log",
			want: "log-home-user-test",
		},
		{
			name: "other extensions are kept",
			path: "/var/log/error.txt",
			want: "log-var-log-error.txt",
		},
		{
			name: "no extension",
			path: "/tmp/output",
			want: "log-tmp-output",
		},
		{
			name: "double extension drops only the trailing log",
			path: "app.log.log",
			want: "log-app.log",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateRepoName(tt.path))
		})
	}
}

func TestGenerateGistFileName(t *testing.T) {
	assert.Equal(t, "home-user-test.log", GenerateGistFileName("/home/user/test.log"))
	assert.Equal(t, "error.txt", GenerateGistFileName("error.txt"))
}
