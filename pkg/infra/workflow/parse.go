package workflow

import (
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Definition is the subset of a GitHub Actions release workflow the
// importer understands: the tag trigger and the target matrix.
type Definition struct {
	TagPatterns []string
	Targets     []string
}

type document struct {
	On struct {
		Push struct {
			Tags []string `yaml:"tags"`
		} `yaml:"push"`
	} `yaml:"on"`
	Jobs map[string]job `yaml:"jobs"`
}

type job struct {
	Strategy struct {
		Matrix struct {
			Include []matrixEntry `yaml:"include"`
		} `yaml:"matrix"`
	} `yaml:"strategy"`
}

type matrixEntry struct {
	OS     string `yaml:"os"`
	Target string `yaml:"target"`
}

// Parse extracts trigger patterns and matrix targets from workflow YAML.
func Parse(data []byte) (*Definition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse workflow YAML")
	}

	def := &Definition{TagPatterns: doc.On.Push.Tags}
	for _, j := range doc.Jobs {
		for _, entry := range j.Strategy.Matrix.Include {
			if entry.Target != "" {
				def.Targets = append(def.Targets, entry.Target)
			}
		}
	}

	if len(def.TagPatterns) == 0 {
		return nil, goerr.New("workflow has no push tag trigger")
	}
	if len(def.Targets) == 0 {
		return nil, goerr.New("workflow has no target matrix")
	}
	return def, nil
}
