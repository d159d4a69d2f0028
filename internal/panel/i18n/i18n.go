// Package i18n provides message catalogs and explicit per-request localizers.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const (
	// Persian is the panel's default language.
	Persian = "fa"
	// English is the catalog fallback for missing keys.
	English = "en"
)

// Catalog holds flattened messages for every supported language.
type Catalog struct {
	dict      map[string]map[string]string
	fallback  string
	preferred string
}

// Load reads the embedded catalogs. preferred is the language used when no
// preference is detected; missing keys fall back to English.
func Load(preferred string) (*Catalog, error) {
	return LoadFS(localeFS, "locales", preferred, English)
}

// LoadFS reads <lang>.yaml files from dir in fsys.
func LoadFS(fsys fs.FS, dir, preferred, fallback string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	c := &Catalog{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		preferred: preferred,
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", name, err)
		}
		flat := map[string]string{}
		flatten("", tree, flat)
		c.dict[strings.TrimSuffix(name, ".yaml")] = flat
	}

	if _, ok := c.dict[fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}
	if _, ok := c.dict[preferred]; !ok {
		return nil, fmt.Errorf("i18n: preferred locale %s not loaded", preferred)
	}
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Supported returns the loaded languages in sorted order.
func (c *Catalog) Supported() []string {
	out := make([]string, 0, len(c.dict))
	for k := range c.dict {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Preferred returns the default language.
func (c *Catalog) Preferred() string { return c.preferred }

// IsSupported reports whether lang has a catalog.
func (c *Catalog) IsSupported(lang string) bool {
	_, ok := c.dict[lang]
	return ok
}

// Localizer binds a catalog to one language.
func (c *Catalog) Localizer(lang string) *Localizer {
	if !c.IsSupported(lang) {
		lang = c.preferred
	}
	return &Localizer{catalog: c, lang: lang}
}

func (c *Catalog) lookup(lang, key string) (string, bool) {
	if m, ok := c.dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	if m, ok := c.dict[c.fallback]; ok {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return "", false
}

// Localizer translates message keys for a single language.
type Localizer struct {
	catalog *Catalog
	lang    string
}

// Lang returns the bound language.
func (l *Localizer) Lang() string {
	if l == nil {
		return Persian
	}
	return l.lang
}

// Dir returns the text direction for the bound language.
func (l *Localizer) Dir() string {
	if l.Lang() == Persian {
		return "rtl"
	}
	return "ltr"
}

// T translates key. Pairs of args fill {{name}} placeholders, e.g.
// T("orders.fulfillment.number", "number", 2). A "count" argument selects the
// CLDR plural variant key_one, key_other, ... when the catalog has one.
// Unknown keys are returned as is.
func (l *Localizer) T(key string, args ...any) string {
	if l == nil || l.catalog == nil {
		return key
	}
	msg, ok := l.pluralLookup(key, args)
	if !ok {
		msg, ok = l.catalog.lookup(l.lang, key)
	}
	if !ok {
		return key
	}
	for i := 0; i+1 < len(args); i += 2 {
		name := fmt.Sprint(args[i])
		msg = strings.ReplaceAll(msg, "{{"+name+"}}", fmt.Sprint(args[i+1]))
	}
	return msg
}

var pluralSuffixes = map[plural.Form]string{
	plural.Zero:  "zero",
	plural.One:   "one",
	plural.Two:   "two",
	plural.Few:   "few",
	plural.Many:  "many",
	plural.Other: "other",
}

func (l *Localizer) pluralLookup(key string, args []any) (string, bool) {
	n, ok := countArg(args)
	if !ok {
		return "", false
	}
	form := plural.Cardinal.MatchPlural(language.Make(l.lang), n, 0, 0, 0, 0)
	if msg, ok := l.catalog.lookup(l.lang, key+"_"+pluralSuffixes[form]); ok {
		return msg, true
	}
	return l.catalog.lookup(l.lang, key+"_other")
}

func countArg(args []any) (int, bool) {
	for i := 0; i+1 < len(args); i += 2 {
		if fmt.Sprint(args[i]) != "count" {
			continue
		}
		switch v := args[i+1].(type) {
		case int:
			return v, true
		case int64:
			return int(v), true
		case int32:
			return int(v), true
		case uint:
			return int(v), true
		}
	}
	return 0, false
}
