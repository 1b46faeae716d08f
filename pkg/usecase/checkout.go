package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hermitcli/hermit/pkg/domain/model"
)

// ExtractZipball extracts a GitHub source zipball into a temporary
// directory. Zipballs wrap the tree in a single top-level directory; its
// name is reported as RootDir. The caller owns TempDir cleanup.
func ExtractZipball(ctx context.Context, zipData []byte) (*model.CheckoutResult, error) {
	logger := ctxlog.From(ctx)

	tempDir, err := os.MkdirTemp("", "hermit-src-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary directory")
	}
	if err := os.Chmod(tempDir, 0o700); err != nil {
		os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to set directory permissions", goerr.V("path", tempDir))
	}

	zipReader, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, goerr.Wrap(err, "failed to open zipball")
	}

	result := &model.CheckoutResult{TempDir: tempDir}
	for _, file := range zipReader.File {
		if result.RootDir == "" {
			result.RootDir = strings.SplitN(file.Name, "/", 2)[0]
		}
		if err := extractFile(file, tempDir); err != nil {
			os.RemoveAll(tempDir)
			return nil, goerr.Wrap(err, "failed to extract file", goerr.V("file", file.Name))
		}
		result.Files++
		result.Size += int64(file.UncompressedSize64)
	}

	if result.RootDir == "" {
		os.RemoveAll(tempDir)
		return nil, goerr.New("zipball is empty")
	}

	logger.Debug("extracted source zipball",
		"temp_dir", result.TempDir,
		"root_dir", result.RootDir,
		"files", result.Files,
		"size_bytes", result.Size,
	)
	return result, nil
}

// extractFile extracts a single zip entry into destDir, rejecting paths
// that would escape it.
func extractFile(file *zip.File, destDir string) error {
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("zip entry escapes destination directory",
			goerr.V("entry", file.Name), goerr.V("dest", destPath))
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(destFile, rc); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}
