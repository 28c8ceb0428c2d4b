package config

import (
	"os"

	"github.com/jrsteele09/go-oidc-broker/trust"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The trusted-domain table maps configuration names to trust lists:
//
//	default:
//	  - "https://demo.duendesoftware.com"
//	  - glob: "https://*.example.com/*"
//	open:
//	  - "*"
//
// A plain string is an anchored-prefix pattern, a glob mapping is an explicit
// pattern object, and "*" is the wildcard sentinel trusting every domain.

type patternEntry struct {
	pattern trust.Pattern
}

func (e *patternEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var literal string
		if err := node.Decode(&literal); err != nil {
			return errors.Wrap(err, "[patternEntry.UnmarshalYAML] scalar entry")
		}
		if literal == "*" {
			e.pattern = trust.Wildcard()
			return nil
		}
		e.pattern = trust.Prefix(literal)
		return nil

	case yaml.MappingNode:
		var mapping struct {
			Prefix string `yaml:"prefix"`
			Glob   string `yaml:"glob"`
		}
		if err := node.Decode(&mapping); err != nil {
			return errors.Wrap(err, "[patternEntry.UnmarshalYAML] mapping entry")
		}
		if mapping.Glob != "" {
			pattern, err := trust.Glob(mapping.Glob)
			if err != nil {
				return err
			}
			e.pattern = pattern
			return nil
		}
		if mapping.Prefix != "" {
			e.pattern = trust.Prefix(mapping.Prefix)
			return nil
		}
		return errors.New("[patternEntry.UnmarshalYAML] entry needs a prefix or glob key")

	default:
		return errors.Errorf("[patternEntry.UnmarshalYAML] unsupported node kind %d", node.Kind)
	}
}

// ParseTrustedDomains parses a trusted-domain table document.
func ParseTrustedDomains(document []byte) (map[string]trust.List, error) {
	var raw map[string][]patternEntry
	if err := yaml.Unmarshal(document, &raw); err != nil {
		return nil, errors.Wrap(err, "[ParseTrustedDomains] unmarshal")
	}

	lists := make(map[string]trust.List, len(raw))
	for name, entries := range raw {
		list := make(trust.List, 0, len(entries))
		for _, entry := range entries {
			list = append(list, entry.pattern)
		}
		lists[name] = list
	}
	return lists, nil
}

// LoadTrustedDomains reads and parses the trusted-domain table file.
func LoadTrustedDomains(path string) (map[string]trust.List, error) {
	document, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadTrustedDomains] read %q", path)
	}
	return ParseTrustedDomains(document)
}
