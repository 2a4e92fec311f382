package template

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// placeholderPattern matches substitution points of the form {{ KEY }},
// tolerating arbitrary whitespace around the key.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// tokenPattern matches any {{ ... }} token, resolved or not. Used to assert
// that rendered output carries no leftovers.
var tokenPattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// Template is an immutable document containing {{ KEY }} placeholder tokens.
// Construct one with New; the zero value renders nothing.
type Template struct {
	text string
}

// New wraps raw template text. Empty (or whitespace-only) input is rejected
// so configuration mistakes surface before render time.
func New(text string) (Template, error) {
	if strings.TrimSpace(text) == "" {
		return Template{}, errors.New("template: empty template")
	}
	return Template{text: text}, nil
}

// MustNew panics on invalid template text. Useful for embedded templates that
// are validated at build time.
func MustNew(text string) Template {
	tpl, err := New(text)
	if err != nil {
		panic(err)
	}
	return tpl
}

// String returns the raw template text.
func (t Template) String() string {
	return t.text
}

// Placeholders returns the sorted set of unique keys the template references.
func (t Template) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(t.text, -1)
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		key := match[1]
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Render substitutes every placeholder with its value from params. Values are
// inserted verbatim: no escaping, no recursive expansion. Rendering is pure
// and idempotent. When any referenced key is absent from params the render
// fails with a MissingParameterError and produces no partial output; extra
// keys in params are ignored.
func (t Template) Render(params ParameterSet) (string, error) {
	if t.text == "" {
		return "", errors.New("template: empty template")
	}

	var missing []string
	for _, key := range t.Placeholders() {
		if _, ok := params[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", &MissingParameterError{Key: missing[0], Keys: missing}
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(t.text, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return params[key]
	})
	return rendered, nil
}

// Unresolved reports any {{ ... }} tokens remaining in a rendered document.
// A successful Render always leaves this empty for templates whose tokens all
// use the {{ KEY }} form; callers use it as a post-render invariant check.
func Unresolved(doc string) []string {
	return tokenPattern.FindAllString(doc, -1)
}
