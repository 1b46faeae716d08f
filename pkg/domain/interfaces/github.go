package interfaces

import "context"

// ReleasePublisher wraps the GitHub Releases API surface the pipeline needs.
type ReleasePublisher interface {
	// EnsureRelease returns the release ID for the tag, creating the
	// release when none exists yet.
	EnsureRelease(ctx context.Context, owner, repo, tag string) (int64, error)

	// UploadAsset attaches the file at path to the release. When clobber is
	// set, an existing asset with the same name is deleted first; otherwise
	// a duplicate name is an error.
	UploadAsset(ctx context.Context, owner, repo string, releaseID int64, path string, clobber bool) error

	// DownloadZipball downloads the source code zipball for a ref
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)
}
