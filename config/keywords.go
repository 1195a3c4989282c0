package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// keywordsFile is the YAML layout of PROMO_KEYWORDS_FILE:
//
//	keywords:
//	  - fone bluetooth
//	  - air fryer
type keywordsFile struct {
	Keywords []string `yaml:"keywords"`
}

func LoadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	return ParseKeywords(data)
}

func ParseKeywords(data []byte) ([]string, error) {
	var f keywordsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keywords file: %w", err)
	}
	var out []string
	for _, k := range f.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out, nil
}

// mergeKeywords appends extra to base, skipping case-insensitive repeats.
func mergeKeywords(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, k := range append(append([]string(nil), base...), extra...) {
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}
