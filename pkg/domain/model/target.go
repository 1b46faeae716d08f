package model

import "fmt"

// Target is one matrix entry: a compilation target identified by its triple.
// The triple names CPU architecture, vendor and OS/ABI; OS and Arch carry the
// GOOS/GOARCH pair the toolchain needs to produce a binary for it.
type Target struct {
	Triple    string
	OS        string
	Arch      string
	ExeSuffix string
}

// BinaryName returns the platform binary name for a base name.
func (t Target) BinaryName(base string) string {
	return base + t.ExeSuffix
}

// ArchiveName returns the release archive name for a repository name.
func (t Target) ArchiveName(repo string) string {
	return fmt.Sprintf("%s-%s.tar.gz", repo, t.Triple)
}

// DefaultMatrix is the fixed three-platform release matrix.
var DefaultMatrix = []Target{
	{Triple: "x86_64-unknown-linux-gnu", OS: "linux", Arch: "amd64"},
	{Triple: "x86_64-apple-darwin", OS: "darwin", Arch: "amd64"},
	{Triple: "x86_64-pc-windows-msvc", OS: "windows", Arch: "amd64", ExeSuffix: ".exe"},
}

// TargetByTriple resolves a triple against the known matrix entries.
func TargetByTriple(triple string) (Target, bool) {
	for _, t := range DefaultMatrix {
		if t.Triple == triple {
			return t, true
		}
	}
	return Target{}, false
}
