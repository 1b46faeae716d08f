package model

// ReleaseRequest describes one requested pipeline execution.
type ReleaseRequest struct {
	Owner     string // Repository owner
	Repo      string // Repository name
	Tag       string // Release tag name, also the checkout ref
	CommitSHA string // Head commit of the pushed tag, if known
	SourceDir string // Local working tree; empty means checkout at Tag
}

// CheckoutResult is a source tree extracted from a downloaded zipball.
type CheckoutResult struct {
	TempDir string // Temporary directory holding the extraction
	RootDir string // Top-level directory inside the zipball
	Files   int    // Number of extracted entries
	Size    int64  // Total uncompressed size in bytes
}
