package pathtemplate

import "sort"

// Token is a named, meaningful path segment. A required token is
// typed by the caller verbatim; an optional token carries a set of
// full-name → abbreviation options, one of which is the default.
type Token struct {
	Name    string
	options map[string]string // full name -> abbreviation
	order   []string          // insertion order, for a stable default
	Default string
}

// NewToken returns an empty, required token.
func NewToken(name string) *Token {
	return &Token{Name: name, options: make(map[string]string)}
}

// Required reports whether this token has no options and must be
// supplied verbatim.
func (t *Token) Required() bool { return len(t.options) == 0 }

// AddOption adds a full-name/abbreviation pair. The first option
// added becomes the default. Returns false if fullname already exists.
func (t *Token) AddOption(fullname, abbreviation string) bool {
	if _, exists := t.options[fullname]; exists {
		return false
	}
	t.options[fullname] = abbreviation
	t.order = append(t.order, fullname)
	if len(t.options) == 1 {
		t.Default = fullname
	}
	return true
}

// Options returns the full-name → abbreviation map.
func (t *Token) Options() map[string]string { return t.options }

func (t *Token) defaultName() string {
	if t.Default != "" {
		return t.Default
	}
	if len(t.order) == 0 {
		return ""
	}
	sorted := append([]string(nil), t.order...)
	sort.Strings(sorted)
	return sorted[0]
}

// Solve returns the abbreviation to place in a path for the given
// full name. An empty name uses the default option. A required token
// returns name unchanged.
func (t *Token) Solve(name string) (string, error) {
	if t.Required() {
		if name == "" {
			return "", tokenErrorf("token %q is required; a value must be passed", t.Name)
		}
		return name, nil
	}
	if name == "" {
		name = t.defaultName()
	}
	abbr, ok := t.options[name]
	if !ok {
		return "", tokenErrorf("name %q not found in token %q options: %v", name, t.Name, t.optionNames())
	}
	return abbr, nil
}

// Parse recovers the full name for a path segment abbreviation. A
// required token returns the value unchanged.
func (t *Token) Parse(value string) (string, error) {
	if t.Required() {
		return value, nil
	}
	for full, abbr := range t.options {
		if abbr == value {
			return full, nil
		}
	}
	return "", tokenErrorf("value %q not found in token %q options", value, t.Name)
}

func (t *Token) optionNames() []string {
	names := append([]string(nil), t.order...)
	sort.Strings(names)
	return names
}
