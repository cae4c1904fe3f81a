package labels

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	LocaleNepali  = "ne"
	LocaleEnglish = "en"
)

//go:embed default.yaml
var defaultCatalog []byte

// text maps a locale to its string.
type text map[string]string

type file struct {
	DefaultLocale string                     `yaml:"default_locale"`
	Locales       []string                   `yaml:"locales"`
	Labels        map[string]map[string]text `yaml:"labels"`
	Messages      map[string]text            `yaml:"messages"`
}

// Catalog is the single source of display strings. It is built once at
// startup and only read afterwards.
type Catalog struct {
	defaultLocale string
	locales       []string
	labels        map[string]map[string]text
	messages      map[string]text
}

func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse label catalog: %w", err)
	}
	c := &Catalog{
		labels:   make(map[string]map[string]text),
		messages: make(map[string]text),
	}
	if err := c.merge(f); err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the embedded catalog with the optional override file merged
// on top. An empty path means no override.
func Load(overridePath string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if overridePath == "" {
		return c, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read label override %s: %w", overridePath, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse label override %s: %w", overridePath, err)
	}
	if err := c.merge(f); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) merge(f file) error {
	if f.DefaultLocale != "" {
		c.defaultLocale = f.DefaultLocale
	}
	for _, l := range f.Locales {
		if !c.Supports(l) {
			c.locales = append(c.locales, l)
		}
	}
	if c.defaultLocale == "" {
		return fmt.Errorf("label catalog has no default_locale")
	}
	if !c.Supports(c.defaultLocale) {
		c.locales = append(c.locales, c.defaultLocale)
	}

	for group, codes := range f.Labels {
		if c.labels[group] == nil {
			c.labels[group] = make(map[string]text)
		}
		for code, t := range codes {
			c.labels[group][code] = mergeText(c.labels[group][code], t)
		}
	}
	for key, t := range f.Messages {
		c.messages[key] = mergeText(c.messages[key], t)
	}
	return nil
}

func mergeText(dst, src text) text {
	if dst == nil {
		dst = make(text, len(src))
	}
	for l, s := range src {
		dst[l] = s
	}
	return dst
}

func (c *Catalog) DefaultLocale() string { return c.defaultLocale }

func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}

func (c *Catalog) Supports(locale string) bool {
	for _, l := range c.locales {
		if l == locale {
			return true
		}
	}
	return false
}

// Resolve maps a requested language to a supported locale.
func (c *Catalog) Resolve(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if c.Supports(lang) {
		return lang
	}
	return c.defaultLocale
}

func (c *Catalog) lookup(t text, locale string) (string, bool) {
	if t == nil {
		return "", false
	}
	if s, ok := t[locale]; ok {
		return s, true
	}
	s, ok := t[c.defaultLocale]
	return s, ok
}

// Label returns the display name of a code, or the code itself when the
// catalog does not know it.
func (c *Catalog) Label(group, code, locale string) string {
	if s, ok := c.lookup(c.labels[group][code], locale); ok {
		return s
	}
	return code
}

// Message fills {placeholders} of a template. Unknown keys render as the key.
func (c *Catalog) Message(key, locale string, args map[string]string) string {
	tmpl, ok := c.lookup(c.messages[key], locale)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// FormatNumber renders v with fixed decimals. Nepali output uses Devanagari
// digits and lakh grouping (12,34,567); English uses thousands grouping.
func (c *Catalog) FormatNumber(v float64, decimals int, locale string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	if locale == LocaleNepali {
		intPart = groupLakh(intPart)
	} else {
		intPart = groupThousands(intPart)
	}
	out := intPart + frac
	if neg {
		out = "-" + out
	}
	if locale == LocaleNepali {
		out = ToDevanagari(out)
	}
	return out
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func groupLakh(s string) string {
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

var toDevanagari = strings.NewReplacer(
	"0", "०", "1", "१", "2", "२", "3", "३", "4", "४",
	"5", "५", "6", "६", "7", "७", "8", "८", "9", "९",
)

func ToDevanagari(s string) string { return toDevanagari.Replace(s) }
