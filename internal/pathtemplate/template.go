package pathtemplate

import (
	"fmt"
	"regexp"
	"strings"
)

// Anchor bits control whether a template's compiled pattern must
// match the start and/or end of a path, mirroring how a nested
// `{@template}` reference is normally unanchored on both ends while a
// top-level template is anchored on both.
const (
	AnchorStart = 1 << iota
	AnchorEnd
	AnchorBoth = AnchorStart | AnchorEnd
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Template is a named pattern of literal text and `{token}` /
// `{@template}` placeholders that can be solved into a concrete path
// or parsed back out of one.
type Template struct {
	Name    string
	Pattern string
	Anchor  int

	store *Store
}

// NewTemplate returns a template. Pass a Store via Store.AddTemplate
// to let it resolve `{token}` and `{@template}` placeholders.
func NewTemplate(name, pattern string, anchor int) *Template {
	return &Template{Name: name, Pattern: pattern, Anchor: anchor}
}

// placeholder is one `{token}` occurrence located in an expanded
// pattern, in left-to-right order.
type placeholder struct {
	token     string
	groupName string
}

// expand recursively substitutes `{@template}` references with their
// referenced template's own expanded pattern, leaving `{token}`
// placeholders untouched. visited guards against reference cycles.
func (t *Template) expand(visited map[string]bool) (string, error) {
	if visited == nil {
		visited = make(map[string]bool)
	}
	if visited[t.Name] {
		return "", templateErrorf("template %q participates in a reference cycle", t.Name)
	}
	visited[t.Name] = true

	var out strings.Builder
	rest := t.Pattern
	for {
		loc := placeholderRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:loc[0]])
		inner := rest[loc[2]:loc[3]]
		if strings.HasPrefix(inner, "@") {
			refName := strings.TrimPrefix(inner, "@")
			if t.store == nil {
				return "", templateErrorf("template %q references %q but has no store", t.Name, refName)
			}
			ref, ok := t.store.Template(refName)
			if !ok {
				return "", templateErrorf("template %q references unknown template %q", t.Name, refName)
			}
			expanded, err := ref.expand(visited)
			if err != nil {
				return "", err
			}
			out.WriteString(expanded)
		} else {
			out.WriteString(rest[loc[0]:loc[1]])
		}
		rest = rest[loc[1]:]
	}
	return out.String(), nil
}

// placeholders scans an already-expanded pattern (no `{@...}` left)
// and returns every `{token}` occurrence in order, numbering repeated
// token names (every occurrence of a repeated name gets its 1-based
// index as a suffix: side1, side2) as spec'd:
// numbering repeated placeholders, trying the numbered key first and
// falling back to the bare key when solving, and stripping the
// numeric suffix from capture-group names to recover the token name
// when parsing.
func placeholders(expanded string) []placeholder {
	matches := placeholderRe.FindAllStringSubmatch(expanded, -1)
	counts := make(map[string]int)
	for _, m := range matches {
		counts[m[1]]++
	}
	seen := make(map[string]int)
	result := make([]placeholder, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		seen[name]++
		groupName := name
		if counts[name] > 1 {
			groupName = fmt.Sprintf("%s%d", name, seen[name])
		}
		result = append(result, placeholder{token: name, groupName: groupName})
	}
	return result
}

// compile turns an expanded pattern into a regular expression with
// one named capture group per placeholder, anchored per t.Anchor.
func compile(expanded string, anchor int) (*regexp.Regexp, []placeholder, error) {
	fields := placeholders(expanded)

	var out strings.Builder
	if anchor&AnchorStart != 0 {
		out.WriteString("^")
	}

	rest := expanded
	idx := 0
	for {
		loc := placeholderRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			out.WriteString(regexp.QuoteMeta(rest))
			break
		}
		out.WriteString(regexp.QuoteMeta(rest[:loc[0]]))
		f := fields[idx]
		idx++
		capture := "[^/]+?"
		if idx == len(fields) {
			capture = ".+"
		}
		out.WriteString(fmt.Sprintf("(?P<%s>%s)", f.groupName, capture))
		rest = rest[loc[1]:]
	}
	if anchor&AnchorEnd != 0 {
		out.WriteString("$")
	}

	re, err := regexp.Compile(out.String())
	if err != nil {
		return nil, nil, templateErrorf("compiling pattern for template %q: %v", expanded, err)
	}
	return re, fields, nil
}

func (t *Template) resolveOccurrence(name string, raw string) (string, error) {
	if t.store != nil {
		if tok, ok := t.store.Token(name); ok {
			return tok.Solve(raw)
		}
	}
	if raw == "" {
		return name, nil
	}
	return raw, nil
}

func lookupValue(values map[string]string, groupName, bareName string) string {
	if v, ok := values[groupName]; ok {
		return v
	}
	return values[bareName]
}

// Solve fills the template's placeholders with values and returns the
// resulting concrete path. A missing value falls through to the
// token's default option, or, for an unregistered token, the token
// name itself used verbatim.
func (t *Template) Solve(values map[string]string) (string, error) {
	expanded, err := t.expand(nil)
	if err != nil {
		return "", err
	}
	fields := placeholders(expanded)

	var out strings.Builder
	rest := expanded
	idx := 0
	for {
		loc := placeholderRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:loc[0]])
		f := fields[idx]
		idx++
		raw := lookupValue(values, f.groupName, f.token)
		resolved, err := t.resolveOccurrence(f.token, raw)
		if err != nil {
			return "", solvingErrorf("template %q: %v", t.Name, err)
		}
		out.WriteString(resolved)
		rest = rest[loc[1]:]
	}
	return out.String(), nil
}

// Parse matches path against the template's pattern and returns the
// token values it carries, keyed by token name.
func (t *Template) Parse(path string) (map[string]string, error) {
	expanded, err := t.expand(nil)
	if err != nil {
		return nil, err
	}
	re, fields, err := compile(expanded, t.Anchor)
	if err != nil {
		return nil, err
	}

	match := re.FindStringSubmatch(path)
	if match == nil {
		return nil, parsingErrorf("path %q does not match template %q", path, t.Name)
	}

	result := make(map[string]string, len(fields))
	for _, f := range fields {
		idx := re.SubexpIndex(f.groupName)
		if idx < 0 || idx >= len(match) {
			continue
		}
		raw := match[idx]
		var resolved string
		if t.store != nil {
			if tok, ok := t.store.Token(f.token); ok {
				resolved, err = tok.Parse(raw)
				if err != nil {
					return nil, parsingErrorf("template %q: %v", t.Name, err)
				}
			} else {
				resolved = raw
			}
		} else {
			resolved = raw
		}
		result[f.token] = resolved
	}
	return result, nil
}
