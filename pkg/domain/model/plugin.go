package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SubcommandMeta describes one subcommand a plugin declares.
type SubcommandMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Manifest is the JSON document a plugin prints when invoked with
// --manifest. The manifest name becomes the installed command name.
type Manifest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Version     string           `json:"version"`
	Commands    []SubcommandMeta `json:"commands,omitempty"`
}

// Validate checks the manifest is usable as an installed plugin.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return goerr.New("plugin manifest has no name")
	}
	if strings.ContainsAny(m.Name, "/\\") || m.Name == "." || m.Name == ".." {
		return goerr.New("plugin name must be a plain file name", goerr.V("name", m.Name))
	}
	if m.Version == "" {
		return goerr.New("plugin manifest has no version", goerr.V("name", m.Name))
	}
	for _, sc := range m.Commands {
		if sc.Name == "" {
			return goerr.New("plugin declares a subcommand with no name", goerr.V("plugin", m.Name))
		}
	}
	return nil
}
