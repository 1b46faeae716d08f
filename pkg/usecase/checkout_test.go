package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hermitcli/hermit/pkg/usecase"
)

func TestExtractZipball(t *testing.T) {
	zipData := createTestZip(t, map[string]string{
		"hermit-abc123/go.mod":         "module github.com/hermitcli/hermit\n",
		"hermit-abc123/main.go":        "package main\n",
		"hermit-abc123/pkg/cli/cli.go": "package cli\n",
		"hermit-abc123/README.md":      "# hermit\n",
	})

	result, err := usecase.ExtractZipball(context.Background(), zipData)
	gt.NoError(t, err)
	defer os.RemoveAll(result.TempDir)

	gt.Value(t, result.RootDir).Equal("hermit-abc123")
	gt.Number(t, result.Files).Equal(4)
	gt.Number(t, result.Size).Greater(int64(0))

	content, err := os.ReadFile(filepath.Join(result.TempDir, "hermit-abc123", "main.go"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("package main\n")

	content, err = os.ReadFile(filepath.Join(result.TempDir, "hermit-abc123", "pkg", "cli", "cli.go"))
	gt.NoError(t, err)
	gt.Value(t, string(content)).Equal("package cli\n")
}

func TestExtractZipball_Empty(t *testing.T) {
	zipData := createTestZip(t, map[string]string{})

	result, err := usecase.ExtractZipball(context.Background(), zipData)
	gt.Error(t, err)
	gt.Value(t, result).Nil()
}

func TestExtractZipball_InvalidData(t *testing.T) {
	result, err := usecase.ExtractZipball(context.Background(), []byte("not a zip"))
	gt.Error(t, err)
	gt.Value(t, result).Nil()
}

func TestExtractZipball_PathTraversal(t *testing.T) {
	zipData := createTestZip(t, map[string]string{
		"hermit-abc123/../../../tmp/evil": "payload",
	})

	result, err := usecase.ExtractZipball(context.Background(), zipData)
	gt.Error(t, err)
	gt.Value(t, result).Nil()
}
