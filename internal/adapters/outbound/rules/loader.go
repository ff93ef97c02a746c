// Package rules loads RGPD rule sets from YAML (or JSON) files and ships the
// built-in default rule set.
package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/complyai/comply/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rgpd_rules.yaml
var defaultRules []byte

// DefaultSource is the name reported for the embedded rule set.
const DefaultSource = "builtin:rgpd_rules.yaml"

// ruleFile is the on-disk layout of a rule source.
type ruleFile struct {
	Version string        `yaml:"version"`
	Rules   []domain.Rule `yaml:"rules"`
}

// YAMLLoader implements domain.RuleLoader. Unknown fields are rejected so a
// misspelled key fails loudly instead of silently disabling a rule.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the rule file at path. An empty path loads the built-in set.
func (l *YAMLLoader) Load(path string) (*domain.RuleSet, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.KindConfig, "reading rules", err)
	}
	return Parse(path, data)
}

// LoadDefault returns the embedded RGPD rule set.
func LoadDefault() (*domain.RuleSet, error) {
	return Parse(DefaultSource, defaultRules)
}

// Parse decodes and validates a rule document. name is used in errors only.
func Parse(name string, data []byte) (*domain.RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f ruleFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.Errorf(domain.KindConfig, "parsing "+name, "rule file is empty")
		}
		return nil, domain.WrapError(domain.KindConfig, "parsing "+name, err)
	}

	rs, err := domain.NewRuleSet(f.Version, f.Rules)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return rs, nil
}
