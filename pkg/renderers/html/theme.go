package html

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ErrUnknownTheme is returned when a requested theme was never registered.
var ErrUnknownTheme = errors.New("html renderer: unknown theme")

// stylesheetAsset is the manifest asset key of the theme stylesheet.
const stylesheetAsset = "html.stylesheet"

// manifestSelector resolves selections from registered manifests. An empty
// name falls back to the default theme; unknown variants fall back to the
// base manifest values.
type manifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

func newManifestSelector(manifests []*theme.Manifest, defaultTheme, defaultVariant string) (*manifestSelector, error) {
	registry := theme.NewRegistry()
	selector := &manifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("html renderer: register theme %q: %w", manifest.Name, err)
		}
		selector.manifests[manifest.Name] = manifest
	}
	if selector.defaultTheme == "" && len(selector.manifests) == 1 {
		for name := range selector.manifests {
			selector.defaultTheme = name
		}
	}
	return selector, nil
}

func (s *manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	if name == "" {
		return nil, nil
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownTheme, name, strings.Join(s.names(), ", "))
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

func (s *manifestSelector) names() []string {
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rendererConfig merges a selection's base manifest with its variant.
func rendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	files := mergeStrings(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if prefix == "" {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}
}

func mergeStrings(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}

// themeContext is the template view of a renderer config.
func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	ctx := map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"style":   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		ctx["stylesheet"] = cfg.AssetURL(stylesheetAsset)
	}
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}
