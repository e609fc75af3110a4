package upload

import "strings"

// NormalizeFileName turns a file path into a flat name usable as a gist file
// name or a repository name: leading slashes are stripped and the remaining
// separators become dashes. Pure string transform, the path is not resolved.
func NormalizeFileName(path string) string {
	trimmed := strings.TrimLeft(path, "/")
	return strings.ReplaceAll(trimmed, "/", "-")
}

// GenerateRepoName derives a repository name from a file path. A trailing
// .log extension is dropped, any other extension is kept as-is.
func GenerateRepoName(path string) string {
	name := NormalizeFileName(path)
	name = strings.TrimSuffix(name, ".log")
	return "log-" + name
}

// GenerateGistFileName derives the name the file carries inside a gist.
func GenerateGistFileName(path string) string {
	return NormalizeFileName(path)
}
