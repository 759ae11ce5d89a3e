package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quill/internal/config"
	"github.com/roach88/quill/internal/settings"
	"github.com/roach88/quill/internal/store"
)

// env bundles the loaded config and opened store for a command run.
type env struct {
	Config *config.Config
	Store  *store.Store
}

func openEnv(opts *RootOptions, formatter *OutputFormatter) (*env, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			formatter.Error(ErrCodeConfig, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "cannot locate config", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "open state database", err)
	}
	return &env{Config: cfg, Store: st}, nil
}

func (e *env) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

// loadEdits reads a YAML file of pending edits keyed by section name,
// e.g.
//
//	site:
//	  title: New title
//	permalink:
//	  postPatternPreset: wordpress
func loadEdits(path string) (map[settings.Domain]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read edits file", err)
	}
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, WrapExitError(ExitCommandError, "parse edits file", err)
	}
	edits := make(map[settings.Domain]map[string]any, len(doc))
	for name, fields := range doc {
		d := settings.Domain(name)
		if !d.Valid() {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown settings section %q in edits file", name))
		}
		edits[d] = fields
	}
	return edits, nil
}
