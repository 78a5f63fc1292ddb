package loader

import (
	"path/filepath"
	"plugin"

	"github.com/sanitycheck/engine/internal/apperror"
)

// pluginSuffix identifies a compiled check/context authored in Go.
const pluginSuffix = ".so"

// loadPluginFile opens a compiled plugin and calls its exported
// Registrations() func. A plugin missing the symbol, or exporting it
// under the wrong type, is a RepoError for that file only — the repo
// load continues with the remaining files.
func loadPluginFile(path string) ([]Registration, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, apperror.Repof("opening plugin %s: %v", path, err)
	}
	sym, err := p.Lookup("Registrations")
	if err != nil {
		return nil, apperror.Repof("plugin %s exports no Registrations symbol: %v", path, err)
	}
	fn, ok := sym.(func() []Registration)
	if !ok {
		return nil, apperror.Repof("plugin %s: Registrations has the wrong signature", path)
	}
	return fn(), nil
}

func isPluginFile(path string) bool {
	return filepath.Ext(path) == pluginSuffix
}
