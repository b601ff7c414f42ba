package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale used when a key or a locale is missing.
const BaseLocale = "bg"

// DefaultNamespace is assumed for keys without a "namespace:" prefix.
const DefaultNamespace = "common"

var (
	// ErrMissingMessage is returned when neither the locale nor the base
	// locale define a key.
	ErrMissingMessage = errors.New("i18n: missing message")
	// ErrUnknownLocale is returned when the catalog has no messages for a locale.
	ErrUnknownLocale = errors.New("i18n: unknown locale")
)

// Func resolves a translation key into a message. Named interpolation
// parameters are passed as a map[string]any argument and substituted into
// "{{name}}" placeholders. Missing keys resolve to the key itself.
type Func func(key string, args ...any) string

// Identity returns keys untouched. Used when no catalog is configured.
func Identity(key string, _ ...any) string {
	return key
}

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Catalog stores messages per locale keyed by "namespace:key".
type Catalog struct {
	mu       sync.RWMutex
	base     string
	messages map[string]map[string]string
	locales  []string
	matcher  language.Matcher
}

//go:embed locales/*/*.yaml
var embeddedLocales embed.FS

// LoadEmbedded loads the catalogs bundled with the package.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedLocales)
}

// MustLoadEmbedded panics when the bundled catalogs are malformed.
func MustLoadEmbedded() *Catalog {
	catalog, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadFromFS reads every locales/<locale>/<namespace>.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("i18n: glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("i18n: no catalog files found")
	}
	sort.Strings(paths)

	catalog := &Catalog{
		base:     BaseLocale,
		messages: make(map[string]map[string]string),
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", p, err)
		}
		if err := catalog.add(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := catalog.messages[catalog.base]; !ok {
		return nil, fmt.Errorf("i18n: base locale %q is not defined", catalog.base)
	}
	return catalog, nil
}

func (c *Catalog) add(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		locale = localeFromPath
	}
	if locale != localeFromPath {
		return fmt.Errorf("i18n: %s: locale %q must match path locale %q", p, locale, localeFromPath)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if namespace == "" {
		namespace = namespaceFromPath
	}
	if namespace != namespaceFromPath {
		return fmt.Errorf("i18n: %s: namespace %q must match file name %q", p, namespace, namespaceFromPath)
	}

	return c.Add(locale, namespace, file.Messages)
}

// Add registers messages for a locale namespace. Duplicate keys are rejected.
func (c *Catalog) Add(locale, namespace string, messages map[string]string) error {
	locale = strings.TrimSpace(locale)
	namespace = strings.TrimSpace(namespace)
	if locale == "" || namespace == "" {
		return errors.New("i18n: locale and namespace are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.messages == nil {
		c.messages = make(map[string]map[string]string)
	}
	bucket, ok := c.messages[locale]
	if !ok {
		bucket = make(map[string]string, len(messages))
		c.messages[locale] = bucket
		c.locales = append(c.locales, locale)
		sort.Strings(c.locales)
		c.matcher = matcherFor(c.locales)
	}
	for key, value := range messages {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return fmt.Errorf("i18n: %s/%s: blank message key", locale, namespace)
		}
		full := namespace + ":" + trimmed
		if _, exists := bucket[full]; exists {
			return fmt.Errorf("i18n: %s: duplicate key %q", locale, full)
		}
		bucket[full] = value
	}
	return nil
}

func matcherFor(locales []string) language.Matcher {
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tags = append(tags, language.Make(locale))
	}
	return language.NewMatcher(tags)
}

// Locales returns the sorted locale identifiers known to the catalog.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.locales...)
}

// Match picks the best supported locale for an Accept-Language header value
// or a bare locale string. It falls back to the base locale.
func (c *Catalog) Match(preferred string) string {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return c.base
	}

	c.mu.RLock()
	matcher, locales := c.matcher, c.locales
	c.mu.RUnlock()
	if matcher == nil || len(locales) == 0 {
		return c.base
	}

	tags, _, err := language.ParseAcceptLanguage(preferred)
	if err != nil || len(tags) == 0 {
		return c.base
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(locales) {
		return c.base
	}
	return locales[index]
}

// Translate satisfies render.Translator. Keys without a namespace resolve in
// DefaultNamespace.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = qualify(key)
	if key == "" {
		return "", ErrMissingMessage
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if bucket, ok := c.messages[strings.TrimSpace(locale)]; ok {
		if msg, ok := bucket[key]; ok {
			return interpolate(msg, args), nil
		}
	}
	if bucket, ok := c.messages[c.base]; ok {
		if msg, ok := bucket[key]; ok {
			return interpolate(msg, args), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingMessage, key)
}

// Func binds the catalog to a locale.
func (c *Catalog) Func(locale string) Func {
	if c == nil {
		return Identity
	}
	return func(key string, args ...any) string {
		msg, err := c.Translate(locale, key, args...)
		if err != nil {
			return key
		}
		return msg
	}
}

func qualify(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if strings.Contains(key, ":") {
		return key
	}
	return DefaultNamespace + ":" + key
}

func interpolate(msg string, args []any) string {
	if !strings.Contains(msg, "{{") {
		return msg
	}
	for _, arg := range args {
		params, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		for name, value := range params {
			msg = strings.ReplaceAll(msg, "{{"+name+"}}", fmt.Sprint(value))
		}
	}
	return msg
}
