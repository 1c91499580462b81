package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a worker manifest from the provided path. Relative workdir
// and envFile entries resolve against the manifest's own directory, and
// ${VAR} references in values expand from the host environment.
func Load(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var doc Manifest
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	baseDir := filepath.Dir(absPath)
	for name, w := range doc.Workers {
		if w == nil {
			continue
		}

		if w.Workdir != "" {
			expanded := os.ExpandEnv(w.Workdir)
			if !filepath.IsAbs(expanded) {
				expanded = filepath.Clean(filepath.Join(baseDir, expanded))
			}
			w.Workdir = expanded
		}

		var inlineEnv map[string]string
		if len(w.Env) > 0 {
			inlineEnv = make(map[string]string, len(w.Env))
			for k, v := range w.Env {
				inlineEnv[k] = os.ExpandEnv(v)
			}
		}

		var fileEnv map[string]string
		if w.EnvFile != "" {
			expanded := os.ExpandEnv(w.EnvFile)
			if !filepath.IsAbs(expanded) {
				expanded = filepath.Clean(filepath.Join(baseDir, expanded))
			}
			w.EnvFile = expanded

			fileEnv, err = godotenv.Read(expanded)
			if err != nil {
				return nil, fmt.Errorf("worker %s: read env file: %w", name, err)
			}
		}

		// Inline entries win over env file entries.
		var merged map[string]string
		if len(fileEnv) > 0 {
			merged = make(map[string]string, len(fileEnv)+len(inlineEnv))
			for k, v := range fileEnv {
				merged[k] = v
			}
		}
		if len(inlineEnv) > 0 {
			if merged == nil {
				merged = make(map[string]string, len(inlineEnv))
			}
			for k, v := range inlineEnv {
				merged[k] = v
			}
		}
		w.Env = merged
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &doc, nil
}
