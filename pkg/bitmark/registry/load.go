package registry

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultTable []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the embedded bit-type table. The
// table is decoded once; later calls return the same instance.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(defaultTable)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("registry: embedded table is invalid: %v", defaultErr))
	}
	return defaultRegistry
}

// rawTag is one entry of a tag list: either a tag or a group reference.
type rawTag struct {
	Key   string   `yaml:"key"`
	Group string   `yaml:"group"`
	Max   int      `yaml:"max"`
	Chain []rawTag `yaml:"chain"`
}

type rawVariant struct {
	Tags        []rawTag `yaml:"tags"`
	BodyAllowed bool     `yaml:"bodyAllowed"`
}

type rawCardSet struct {
	Shape string         `yaml:"shape"`
	Sides [][]rawVariant `yaml:"sides"`
}

type rawBit struct {
	Inherits                  string            `yaml:"inherits"`
	Aliases                   []string          `yaml:"aliases"`
	Tags                      []rawTag          `yaml:"tags"`
	ResourceAttachmentAllowed *bool             `yaml:"resourceAttachmentAllowed"`
	ResourceType              string            `yaml:"resourceType"`
	CardSet                   string            `yaml:"cardSet"`
	BodyAllowed               *bool             `yaml:"bodyAllowed"`
	FooterAllowed             *bool             `yaml:"footerAllowed"`
	TrueFalse                 string            `yaml:"trueFalse"`
	RootExample               string            `yaml:"rootExample"`
	Defaults                  map[string]string `yaml:"defaults"`
	Owns                      []string          `yaml:"owns"`
}

type rawTable struct {
	TextFormats       []string              `yaml:"textFormats"`
	DefaultTextFormat string                `yaml:"defaultTextFormat"`
	ResourceTypes     []string              `yaml:"resourceTypes"`
	Groups            map[string][]rawTag   `yaml:"groups"`
	CardSets          map[string]rawCardSet `yaml:"cardSets"`
	Bits              map[string]rawBit     `yaml:"bits"`
}

// Load builds a registry from a YAML bit-type table.
func Load(data []byte) (*Registry, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode registry table: %w", err)
	}

	l := &loader{raw: &raw, expanding: make(map[string]bool)}

	r := &Registry{
		bits:          make(map[string]*BitTypeMetadata, len(raw.Bits)),
		aliases:       make(map[string]string),
		cardSets:      make(map[string]*CardSetConfig, len(raw.CardSets)),
		textFormats:   raw.TextFormats,
		resourceTypes: raw.ResourceTypes,
		defaultFormat: raw.DefaultTextFormat,
	}
	if r.defaultFormat == "" && len(r.textFormats) > 0 {
		r.defaultFormat = r.textFormats[0]
	}

	for name, rc := range raw.CardSets {
		cs, err := l.cardSet(name, rc)
		if err != nil {
			return nil, err
		}
		r.cardSets[name] = cs
	}

	for name := range raw.Bits {
		if _, err := l.bit(r, name, 0); err != nil {
			return nil, err
		}
	}

	for name, m := range r.bits {
		for _, alias := range m.Aliases {
			if prev, dup := r.aliases[alias]; dup && prev != name {
				return nil, fmt.Errorf("alias %q is declared by both %q and %q", alias, prev, name)
			}
			if _, clash := r.bits[alias]; clash {
				return nil, fmt.Errorf("alias %q of %q clashes with a bit type", alias, name)
			}
			r.aliases[alias] = name
		}
	}

	return r, nil
}

type loader struct {
	raw       *rawTable
	expanding map[string]bool
}

func (l *loader) cardSet(name string, rc rawCardSet) (*CardSetConfig, error) {
	shape := Shape(rc.Shape)
	if !shape.Valid() {
		return nil, fmt.Errorf("card set %q: unknown shape %q", name, rc.Shape)
	}
	if len(rc.Sides) == 0 {
		return nil, fmt.Errorf("card set %q: no sides configured", name)
	}

	cs := &CardSetConfig{Name: name, Shape: shape}
	for i, side := range rc.Sides {
		variants := make([]*VariantConfig, 0, len(side))
		for j, rv := range side {
			tags, err := l.tags(rv.Tags)
			if err != nil {
				return nil, fmt.Errorf("card set %q side %d variant %d: %w", name, i, j, err)
			}
			variants = append(variants, &VariantConfig{Tags: tags, BodyAllowed: rv.BodyAllowed})
		}
		cs.Sides = append(cs.Sides, variants)
	}
	return cs, nil
}

// bit resolves one bit type, building its parent first.
func (l *loader) bit(r *Registry, name string, depth int) (*BitTypeMetadata, error) {
	if m, ok := r.bits[name]; ok {
		return m, nil
	}
	rb, ok := l.raw.Bits[name]
	if !ok {
		return nil, fmt.Errorf("bit type %q is not declared", name)
	}
	if depth > len(l.raw.Bits) {
		return nil, fmt.Errorf("bit type %q: inheritance cycle", name)
	}

	m := &BitTypeMetadata{
		Name:      name,
		Tags:      TagMap{},
		TrueFalse: TrueFalseSelect,
		Defaults:  map[string]string{},
	}

	if rb.Inherits != "" {
		parent, err := l.bit(r, rb.Inherits, depth+1)
		if err != nil {
			return nil, fmt.Errorf("bit type %q: %w", name, err)
		}
		inherit(m, parent)
		m.Parent = parent.Name
	}

	tags, err := l.tags(rb.Tags)
	if err != nil {
		return nil, fmt.Errorf("bit type %q: %w", name, err)
	}
	for k, td := range tags {
		m.Tags[k] = td
	}

	m.Aliases = rb.Aliases
	if rb.ResourceAttachmentAllowed != nil {
		m.ResourceAttachmentAllowed = *rb.ResourceAttachmentAllowed
	}
	if rb.ResourceType != "" {
		m.ResourceType = rb.ResourceType
	}
	if rb.CardSet != "" {
		cs, ok := r.cardSets[rb.CardSet]
		if !ok {
			return nil, fmt.Errorf("bit type %q: unknown card set %q", name, rb.CardSet)
		}
		m.CardSet = cs
	}
	if rb.BodyAllowed != nil {
		m.BodyAllowed = *rb.BodyAllowed
	}
	if rb.FooterAllowed != nil {
		m.FooterAllowed = *rb.FooterAllowed
	}
	if rb.TrueFalse != "" {
		m.TrueFalse = TrueFalseMode(rb.TrueFalse)
	}
	if rb.RootExample != "" {
		m.RootExample = ExampleType(rb.RootExample)
	}
	for k, v := range rb.Defaults {
		m.Defaults[k] = v
	}
	m.Owns = append(m.Owns, rb.Owns...)

	r.bits[name] = m
	return m, nil
}

func inherit(m, parent *BitTypeMetadata) {
	for k, td := range parent.Tags {
		m.Tags[k] = td
	}
	m.ResourceAttachmentAllowed = parent.ResourceAttachmentAllowed
	m.ResourceType = parent.ResourceType
	m.CardSet = parent.CardSet
	m.BodyAllowed = parent.BodyAllowed
	m.FooterAllowed = parent.FooterAllowed
	m.TrueFalse = parent.TrueFalse
	m.RootExample = parent.RootExample
	m.Defaults = make(map[string]string, len(parent.Defaults))
	for k, v := range parent.Defaults {
		m.Defaults[k] = v
	}
	m.Owns = append([]string(nil), parent.Owns...)
}

// tags flattens a raw tag list, expanding group references.
func (l *loader) tags(list []rawTag) (TagMap, error) {
	out := TagMap{}
	if err := l.expand(out, list); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *loader) expand(out TagMap, list []rawTag) error {
	for _, rt := range list {
		if rt.Group != "" {
			if l.expanding[rt.Group] {
				return fmt.Errorf("group %q includes itself", rt.Group)
			}
			group, ok := l.raw.Groups[rt.Group]
			if !ok {
				return fmt.Errorf("unknown group %q", rt.Group)
			}
			l.expanding[rt.Group] = true
			err := l.expand(out, group)
			delete(l.expanding, rt.Group)
			if err != nil {
				return err
			}
			continue
		}

		if rt.Key == "" {
			return fmt.Errorf("tag entry has neither key nor group")
		}

		td := &TagData{
			Key:        rt.Key,
			MaxCount:   rt.Max,
			IsProperty: strings.HasPrefix(rt.Key, "@"),
			IsResource: strings.HasPrefix(rt.Key, "&"),
		}
		if rt.Chain != nil {
			chain, err := l.tags(rt.Chain)
			if err != nil {
				return fmt.Errorf("chain of %q: %w", rt.Key, err)
			}
			td.Chain = chain
		}
		out[rt.Key] = td
	}
	return nil
}

// LoadFile builds a registry from the YAML bit-type table at path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry table: %w", err)
	}
	return Load(data)
}
