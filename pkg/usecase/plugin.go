package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/domain/types"
)

// PluginManager installs and runs external script plugins. A plugin is a
// single executable that prints a JSON manifest when invoked with
// --manifest; the installed copy and its manifest live side by side in the
// plugin directory.
type PluginManager struct {
	dir string
}

// DefaultPluginDir returns the per-user plugin directory.
func DefaultPluginDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve user config directory")
	}
	return filepath.Join(dir, types.AppName, "plugins"), nil
}

// NewPluginManager creates a manager rooted at dir.
func NewPluginManager(dir string) *PluginManager {
	return &PluginManager{dir: dir}
}

// Dir returns the plugin directory.
func (m *PluginManager) Dir() string {
	return m.dir
}

// Add validates the candidate script via its --manifest output and installs
// the script together with the manifest JSON.
func (m *PluginManager) Add(ctx context.Context, path string) (*model.Manifest, error) {
	manifest, err := m.queryManifest(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create plugin directory", goerr.V("dir", m.dir))
	}

	script := filepath.Join(m.dir, manifest.Name)
	if err := copyExecutable(path, script); err != nil {
		return nil, goerr.Wrap(err, "failed to install plugin script", goerr.V("name", manifest.Name))
	}

	meta, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode plugin manifest", goerr.V("name", manifest.Name))
	}
	if err := os.WriteFile(script+".json", meta, 0o644); err != nil {
		return nil, goerr.Wrap(err, "failed to write plugin manifest", goerr.V("name", manifest.Name))
	}

	ctxlog.From(ctx).Info("installed plugin",
		"name", manifest.Name,
		"version", manifest.Version,
		"commands", len(manifest.Commands),
	)
	return manifest, nil
}

// queryManifest runs the candidate with --manifest through a temporary
// executable copy, so scripts without the exec bit can still be validated.
func (m *PluginManager) queryManifest(ctx context.Context, path string) (*model.Manifest, error) {
	tmpDir, err := os.MkdirTemp("", "hermit-plugin-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary directory")
	}
	defer os.RemoveAll(tmpDir)

	tmp := filepath.Join(tmpDir, filepath.Base(path))
	if err := copyExecutable(path, tmp); err != nil {
		return nil, goerr.Wrap(err, "failed to read plugin candidate", goerr.V("path", path))
	}

	out, err := exec.CommandContext(ctx, tmp, "--manifest").Output()
	if err != nil {
		return nil, goerr.Wrap(err, "plugin did not return a manifest", goerr.V("path", path))
	}

	var manifest model.Manifest
	if err := json.Unmarshal(out, &manifest); err != nil {
		return nil, goerr.Wrap(err, "plugin returned invalid manifest JSON", goerr.V("path", path))
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Remove deletes an installed plugin and its manifest.
func (m *PluginManager) Remove(name string) error {
	script := filepath.Join(m.dir, name)
	meta := script + ".json"

	if _, err := os.Stat(script); err != nil {
		return goerr.Wrap(err, "no such plugin", goerr.V("name", name))
	}
	if err := os.Remove(script); err != nil {
		return goerr.Wrap(err, "failed to remove plugin script", goerr.V("name", name))
	}
	if err := os.Remove(meta); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove plugin manifest", goerr.V("name", name))
	}
	return nil
}

// List returns the manifests of installed plugins, sorted by name.
// Unparseable manifest files are skipped.
func (m *PluginManager) List() ([]*model.Manifest, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read plugin directory", goerr.V("dir", m.dir))
	}

	var manifests []*model.Manifest
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			continue
		}
		var manifest model.Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}
		if manifest.Validate() != nil {
			continue
		}
		manifests = append(manifests, &manifest)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Name < manifests[j].Name
	})
	return manifests, nil
}

// ScriptPath returns the installed script location for a plugin name.
func (m *PluginManager) ScriptPath(name string) string {
	return filepath.Join(m.dir, name)
}

// Exec runs an installed plugin with the given arguments, wiring the
// current process's standard streams. The plugin's exit code is returned.
func (m *PluginManager) Exec(ctx context.Context, name string, args []string) (int, error) {
	script := m.ScriptPath(name)
	if _, err := os.Stat(script); err != nil {
		return 1, goerr.Wrap(err, "plugin not installed", goerr.V("name", name))
	}

	cmd := exec.CommandContext(ctx, script, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, goerr.Wrap(err, "failed to run plugin", goerr.V("name", name))
	}
	return 0, nil
}

const pluginTemplate = `#!/usr/bin/env python3
import sys, json

MANIFEST = {
    "name": "<<NAME>>",
    "description": "Describe what this plugin does",
    "version": "0.1.0",
    "commands": [
        { "name": "run",    "description": "Run the job" },
        { "name": "status", "description": "Show status" }
    ]
}

def manifest():
    print(json.dumps(MANIFEST))
    sys.exit(0)

def run(args):
    print("Running <<NAME>> with", args)

def status(args):
    print("<<NAME>> status:", args)

def main():
    cmds = {"run": run, "status": status}
    sub  = sys.argv[1] if len(sys.argv) > 1 else None
    if sub in cmds:
        cmds[sub](sys.argv[2:])
    else:
        print("usage: {0} {{run|status}} ...".format(MANIFEST["name"]))

if __name__ == "__main__":
    if "--manifest" in sys.argv:
        manifest()
    else:
        main()
`

// CreateTemplate writes an executable plugin scaffold named <name>.py into
// destDir and returns its path.
func (m *PluginManager) CreateTemplate(name, destDir string) (string, error) {
	if name == "" {
		return "", goerr.New("plugin name is required")
	}
	path := filepath.Join(destDir, name+".py")
	contents := strings.ReplaceAll(pluginTemplate, "<<NAME>>", name)
	if err := os.WriteFile(path, []byte(contents), 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to write plugin template", goerr.V("path", path))
	}
	return path, nil
}

func copyExecutable(src, dst string) error {
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
