package html

import (
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    assetsFile             `yaml:"assets"`
	Variants  map[string]variantFile `yaml:"variants"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsFile        `yaml:"assets"`
}

// ParseManifest decodes a YAML theme manifest:
//
//	name: donor
//	version: 1.0.0
//	tokens: {brand: "#123456"}
//	assets: {prefix: /assets/themes/donor, files: {html.stylesheet: theme.css}}
//	variants:
//	  dark: {tokens: {brand: "#654321"}}
func ParseManifest(data []byte) (*theme.Manifest, error) {
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("html renderer: decode theme manifest: %w", err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return nil, fmt.Errorf("html renderer: theme manifest has no name")
	}

	manifest := &theme.Manifest{
		Name:      file.Name,
		Version:   file.Version,
		Tokens:    file.Tokens,
		Templates: file.Templates,
		Assets:    theme.Assets{Prefix: file.Assets.Prefix, Files: file.Assets.Files},
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, variant := range file.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}
	return manifest, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("html renderer: read theme manifest: %w", err)
	}
	return ParseManifest(data)
}
