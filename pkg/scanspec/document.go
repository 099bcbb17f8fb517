package scanspec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Document is a set of machine definitions as stored in YAML or JSON.
type Document struct {
	Machines []MachineDef `yaml:"machines"`
}

// MachineDef declares one named state table. The first state is initial.
type MachineDef struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	// Fallback is "none" (default) or "accumulated". With "accumulated"
	// a scan that runs out of input returns what it collected so far.
	Fallback string     `yaml:"fallback,omitempty"`
	MaxSteps int        `yaml:"max_steps,omitempty"`
	States   []StateDef `yaml:"states"`
}

type StateDef struct {
	Name        string          `yaml:"name"`
	Transitions []TransitionDef `yaml:"transitions"`
}

type TransitionDef struct {
	Match      MatchDef       `yaml:"match"`
	Accumulate *AccumulateDef `yaml:"accumulate,omitempty"`
	Advance    *AdvanceDef    `yaml:"advance,omitempty"`
	Next       string         `yaml:"next"`
}

// MatchDef is written either as the scalar "default" or as a mapping with
// exactly one of char, range, any, regex or default set.
//
//	match: default
//	match: {char: '"'}
//	match: {range: "0-9"}
//	match: {any: ["a-z", "A-Z", "_"]}
//	match: {regex: '\d+(\.\d+)?'}
type MatchDef struct {
	Char    string   `yaml:"char,omitempty"`
	Range   string   `yaml:"range,omitempty"`
	Any     []string `yaml:"any,omitempty"`
	Regex   string   `yaml:"regex,omitempty"`
	Default bool     `yaml:"default,omitempty"`
}

func (m *MatchDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "default" {
			return fmt.Errorf("line %d: unknown matcher %q", node.Line, node.Value)
		}
		*m = MatchDef{Default: true}
		return nil
	}
	if err := checkKeys(node, "match", "char", "range", "any", "regex", "default"); err != nil {
		return err
	}
	type plain MatchDef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = MatchDef(p)
	return nil
}

// AccumulateDef is written as the scalar "match" or as {group: N} or
// {combine: NAME}.
type AccumulateDef struct {
	Match   bool   `yaml:"match,omitempty"`
	Group   *int   `yaml:"group,omitempty"`
	Combine string `yaml:"combine,omitempty"`
}

func (a *AccumulateDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "match" {
			return fmt.Errorf("line %d: unknown accumulate mode %q", node.Line, node.Value)
		}
		*a = AccumulateDef{Match: true}
		return nil
	}
	if err := checkKeys(node, "accumulate", "match", "group", "combine"); err != nil {
		return err
	}
	type plain AccumulateDef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = AccumulateDef(p)
	return nil
}

// AdvanceDef is written as the scalar "char" or "match", or as {group: N}
// or {func: NAME}.
type AdvanceDef struct {
	Char  bool   `yaml:"char,omitempty"`
	Match bool   `yaml:"match,omitempty"`
	Group *int   `yaml:"group,omitempty"`
	Func  string `yaml:"func,omitempty"`
}

func (a *AdvanceDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case "char":
			*a = AdvanceDef{Char: true}
		case "match":
			*a = AdvanceDef{Match: true}
		default:
			return fmt.Errorf("line %d: unknown advance mode %q", node.Line, node.Value)
		}
		return nil
	}
	if err := checkKeys(node, "advance", "char", "match", "group", "func"); err != nil {
		return err
	}
	type plain AdvanceDef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = AdvanceDef(p)
	return nil
}

// checkKeys rejects unknown keys of a mapping node. node.Decode does not
// inherit the decoder's KnownFields setting.
func checkKeys(node *yaml.Node, what string, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("line %d: unknown %s key %q", key.Line, what, key.Value)
		}
	}
	return nil
}

// Parse decodes a YAML or JSON document.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a YAML or JSON document from r. Unknown keys are rejected at
// every level.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, errors.Join(ErrInvalidDocument, err)
	}
	return &doc, nil
}
