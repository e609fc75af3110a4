package upload

// GistMaxSizeBytes is the largest file that is uploaded as a gist. GitHub
// advertises a 100 MiB per-file ceiling, but gist creation above 25 MiB
// tends to fail upstream with 5xx, so anything larger goes into a
// repository instead.
const GistMaxSizeBytes int64 = 25 * 1024 * 1024

// RepoChunkSizeBytes is the chunk size used when a file uploaded into a
// repository exceeds GitHub's single file limit.
const RepoChunkSizeBytes int64 = 100 * 1024 * 1024

// DryRunPlaceholderURL is returned as the upload URL when DryMode is set.
const DryRunPlaceholderURL = "dry-run://no-upload"

// UploadType is the mechanism used to publish a file on GitHub.
type UploadType int8

const (
	// UploadTypeGist publishes the file as a single gist.
	UploadTypeGist UploadType = iota
	// UploadTypeRepo publishes the file into a newly created repository,
	// split into chunks when it exceeds RepoChunkSizeBytes.
	UploadTypeRepo
)

func (t UploadType) String() string {
	switch t {
	case UploadTypeGist:
		return "gist"
	case UploadTypeRepo:
		return "repository"
	}
	return "unknown"
}

// Options is the input of UploadLog and of the standalone uploaders.
type Options struct {
	// FilePath is the log file to upload. Required.
	FilePath string
	// Description is attached to the gist or repository. When empty, a
	// default derived from the file name is used.
	Description string
	// IsPublic makes the created gist or repository publicly visible.
	IsPublic bool

	// OnlyGist forces the gist uploader regardless of file size and
	// disables the repository fallback.
	OnlyGist bool
	// OnlyRepository forces the repository uploader regardless of file size.
	OnlyRepository bool
	// Auto keeps the size-based decision. It exists so callers can be
	// explicit about not overriding; it never changes the outcome.
	Auto bool

	// DryMode stops after strategy resolution. No process is spawned and
	// nothing is written to disk.
	DryMode bool
	// Compress stages a zstd-compressed copy instead of the raw file.
	// Repository uploads only, gists stay readable in the browser.
	Compress bool
	// Verify probes the resulting URL with a HEAD request after upload.
	Verify bool
	// Verbose enables debug logging.
	Verbose bool

	// MirrorBucket enables a best-effort S3 copy of the uploaded file.
	MirrorBucket    string
	MirrorKeyPrefix string
	MirrorRegion    string
	// MirrorAccessKeyID and MirrorSecretAccessKey override the default
	// AWS credential chain for the mirror upload.
	MirrorAccessKeyID     string
	MirrorSecretAccessKey string
}

// StrategyDecision is the result of the size-based strategy selection.
type StrategyDecision struct {
	Type       UploadType
	FileSize   int64
	NeedsSplit bool
	// NumChunks is the number of parts a repository upload will create.
	// 1 when no splitting is needed, 0 for gists.
	NumChunks int
	ChunkSize int64
	Reason    string
}

// Result describes a finished (or dry-run) upload.
type Result struct {
	Type UploadType
	// URL points at the created gist or repository, or is
	// DryRunPlaceholderURL in dry mode.
	URL string
	// FileName is the name the file carries inside the gist, gist uploads only.
	FileName string
	// RepositoryName is the generated repository name, repository uploads only.
	RepositoryName string
	IsPublic       bool
	DryMode        bool
	// WorkingDir is the scratch directory of a successful repository
	// upload. It is left in place for inspection.
	WorkingDir string
	// MirrorURL is the s3:// location of the mirror copy, when one was made.
	MirrorURL string
}
