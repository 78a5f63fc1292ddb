package pathtemplate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RepoEnvVar names the environment variable that, if set, overrides
// the repo directory passed to LoadRepo when its argument is empty.
const RepoEnvVar = "FOLDERSTRUCTURE_REPO"

const (
	tokenExt    = ".token"
	templateExt = ".template"
	configFile  = "folderstructure.conf"
)

type tokenData struct {
	SerializableClassname string            `json:"_Serializable_classname"`
	SerializableVersion   string            `json:"_Serializable_version"`
	Name                  string            `json:"name"`
	Options               map[string]string `json:"options"`
	Default               string            `json:"default"`
}

type templateData struct {
	SerializableClassname string `json:"_Serializable_classname"`
	SerializableVersion   string `json:"_Serializable_version"`
	Name                  string `json:"name"`
	Pattern               string `json:"pattern"`
	Anchor                int    `json:"anchor"`
}

// LoadRepo reads every ".token" and ".template" file under dir into a
// Store. An empty dir falls back to the FOLDERSTRUCTURE_REPO
// environment variable. The repo is only considered valid if
// "folderstructure.conf" is present, matching the original
// session-root marker file.
func LoadRepo(dir string) (*Store, error) {
	if dir == "" {
		dir = os.Getenv(RepoEnvVar)
	}
	if dir == "" {
		return nil, templateErrorf("no repo directory given and %s is not set", RepoEnvVar)
	}
	if _, err := os.Stat(filepath.Join(dir, configFile)); err != nil {
		return nil, templateErrorf("%q is not a folder structure repo: %s not found", dir, configFile)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, templateErrorf("reading repo %q: %v", dir, err)
	}

	store := NewStore()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tokenExt) {
			continue
		}
		tok, err := loadTokenFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		store.AddToken(tok)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		tmpl, err := loadTemplateFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		store.AddTemplate(tmpl)
	}

	return store, nil
}

func loadTokenFile(path string) (*Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, templateErrorf("reading token file %q: %v", path, err)
	}
	var data tokenData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, templateErrorf("parsing token file %q: %v", path, err)
	}
	if data.SerializableClassname != "" && data.SerializableClassname != "Token" {
		return nil, templateErrorf("%q is not a Token file (got %q)", path, data.SerializableClassname)
	}

	tok := NewToken(data.Name)
	for full, abbr := range data.Options {
		tok.AddOption(full, abbr)
	}
	if data.Default != "" {
		tok.Default = data.Default
	}
	return tok, nil
}

func loadTemplateFile(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, templateErrorf("reading template file %q: %v", path, err)
	}
	var data templateData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, templateErrorf("parsing template file %q: %v", path, err)
	}
	if data.SerializableClassname != "" && data.SerializableClassname != "Template" {
		return nil, templateErrorf("%q is not a Template file (got %q)", path, data.SerializableClassname)
	}
	anchor := data.Anchor
	if anchor == 0 {
		anchor = AnchorStart
	}
	return NewTemplate(data.Name, data.Pattern, anchor), nil
}

// SaveToken writes t to dir as "<name>.token", mirroring the original
// implementation's one-file-per-object layout.
func SaveToken(t *Token, dir string) error {
	data := tokenData{
		SerializableClassname: "Token",
		SerializableVersion:   "1.0",
		Name:                  t.Name,
		Options:               t.options,
		Default:               t.Default,
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token %q: %w", t.Name, err)
	}
	path := filepath.Join(dir, t.Name+tokenExt)
	return os.WriteFile(path, raw, 0o644)
}

// SaveTemplate writes t to dir as "<name>.template".
func SaveTemplate(t *Template, dir string) error {
	data := templateData{
		SerializableClassname: "Template",
		SerializableVersion:   "1.0",
		Name:                  t.Name,
		Pattern:               t.Pattern,
		Anchor:                t.Anchor,
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding template %q: %w", t.Name, err)
	}
	path := filepath.Join(dir, t.Name+templateExt)
	return os.WriteFile(path, raw, 0o644)
}
