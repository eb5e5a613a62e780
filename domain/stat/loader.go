package stat

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlStatFile is the YAML structure shared by the vocabulary files.
type yamlStatFile struct {
	Kind       string              `yaml:"kind"`
	Known      []string            `yaml:"known"`
	Offensive  []yamlOption        `yaml:"offensive"`
	Defensive  []yamlOption        `yaml:"defensive"`
	Truncated  []yamlTruncated     `yaml:"truncated"`
	Options    []string            `yaml:"options"`
	Exceptions map[string][]string `yaml:"exceptions"`
}

type yamlOption struct {
	Name   string   `yaml:"name"`
	Base   string   `yaml:"base"`
	Values []string `yaml:"values"`
}

type yamlTruncated struct {
	Name         string   `yaml:"name"`
	Keywords     []string `yaml:"keywords"`
	Phrase       string   `yaml:"phrase"`
	LineKeywords []string `yaml:"line_keywords"`
}

// Catalog holds every loaded vocabulary.
type Catalog struct {
	Arrival *Vocabulary
	Stellar *StellarOptions
}

// LoadFromFS loads vocabulary files from the "stats" directory of fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, "stats")
	if err != nil {
		return nil, fmt.Errorf("failed to read stats directory: %w", err)
	}

	catalog := &Catalog{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		if err := loadFile(fsys, "stats/"+entry.Name(), catalog); err != nil {
			return nil, err
		}
	}

	if catalog.Arrival == nil {
		return nil, fmt.Errorf("no arrival vocabulary found")
	}
	if catalog.Stellar == nil {
		return nil, fmt.Errorf("no stellar options found")
	}
	return catalog, nil
}

func loadFile(fsys fs.FS, path string, catalog *Catalog) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read stat file %s: %w", path, err)
	}

	var f yamlStatFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse stat file %s: %w", path, err)
	}

	switch f.Kind {
	case "arrival":
		catalog.Arrival = convertVocabulary(&f)
	case "stellar":
		catalog.Stellar = NewStellarOptions(f.Options, f.Exceptions)
	default:
		return fmt.Errorf("stat file %s: unknown kind %q", path, f.Kind)
	}
	return nil
}

func convertVocabulary(f *yamlStatFile) *Vocabulary {
	options := make([]Option, 0, len(f.Offensive)+len(f.Defensive))
	for _, o := range f.Offensive {
		options = append(options, convertOption(o, CategoryOffensive))
	}
	for _, o := range f.Defensive {
		options = append(options, convertOption(o, CategoryDefensive))
	}

	rules := make([]TruncatedRule, len(f.Truncated))
	for i, t := range f.Truncated {
		rules[i] = TruncatedRule{
			Name:         t.Name,
			Keywords:     t.Keywords,
			Phrase:       t.Phrase,
			LineKeywords: t.LineKeywords,
		}
	}

	return NewVocabulary(f.Known, options, rules)
}

func convertOption(o yamlOption, c Category) Option {
	base := o.Base
	if base == "" {
		base = o.Name
	}
	return Option{
		Display:  o.Name,
		Base:     base,
		Category: c,
		Values:   o.Values,
	}
}
