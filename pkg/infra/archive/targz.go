package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Packager writes single-binary tar.gz release archives. Header metadata is
// pinned so identical input bytes produce identical archives.
type Packager struct{}

// NewPackager creates a Packager.
func NewPackager() *Packager {
	return &Packager{}
}

// Package stages binPath under distDir and writes distDir/archiveName
// containing exactly one entry: the binary at archive root. The staging
// directory is removed once the archive is written.
func (p *Packager) Package(binPath, distDir, archiveName string) (string, error) {
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create dist directory", goerr.V("path", distDir))
	}

	stageDir := filepath.Join(distDir, ".stage-"+strings.TrimSuffix(archiveName, ".tar.gz"))
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create staging directory", goerr.V("path", stageDir))
	}
	defer os.RemoveAll(stageDir)

	binName := filepath.Base(binPath)
	staged := filepath.Join(stageDir, binName)
	if err := copyFile(binPath, staged); err != nil {
		return "", goerr.Wrap(err, "failed to stage binary", goerr.V("binary", binPath))
	}

	archivePath := filepath.Join(distDir, archiveName)
	if err := writeTarGz(archivePath, staged, binName); err != nil {
		return "", goerr.Wrap(err, "failed to write archive", goerr.V("archive", archivePath))
	}
	return archivePath, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

func writeTarGz(archivePath, filePath, entryName string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)

	// Fixed ModTime keeps archives byte-stable across repeated runs on the
	// same inputs.
	hdr := &tar.Header{
		Name:    entryName,
		Mode:    0o755,
		Size:    info.Size(),
		ModTime: time.Unix(0, 0),
		Format:  tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		f.Close()
		return err
	}

	src, err := os.Open(filePath)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := io.Copy(tw, src); err != nil {
		src.Close()
		f.Close()
		return err
	}
	src.Close()

	if err := tw.Close(); err != nil {
		f.Close()
		return err
	}
	if err := gzw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
