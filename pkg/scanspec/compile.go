package scanspec

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/dmitrymomot/scankit/pkg/scanner"
)

const (
	FallbackNone        = "none"
	FallbackAccumulated = "accumulated"
)

// Machine is a compiled machine together with its run defaults.
type Machine struct {
	Name        string
	Description string
	Table       *scanner.Table

	fallback bool
	maxSteps int
}

// Run scans cur with the machine's defaults. opts are applied after the
// defaults and override them.
func (m *Machine) Run(ctx context.Context, cur scanner.Cursor, opts ...scanner.RunOption) (scanner.Result, error) {
	base := make([]scanner.RunOption, 0, len(opts)+2)
	if m.fallback {
		base = append(base, scanner.WithFallback(scanner.Accumulated))
	}
	if m.maxSteps > 0 {
		base = append(base, scanner.WithMaxSteps(m.maxSteps))
	}
	return m.Table.Run(ctx, cur, append(base, opts...)...)
}

// MaxSteps returns the machine's step limit, zero when unlimited.
func (m *Machine) MaxSteps() int { return m.maxSteps }

// Library is the compiled form of a Document. It is immutable.
type Library struct {
	machines map[string]*Machine
	names    []string
}

// Machine returns the named machine.
func (l *Library) Machine(name string) (*Machine, error) {
	m, ok := l.machines[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownMachine, name)
	}
	return m, nil
}

// Names returns machine names in document order.
func (l *Library) Names() []string {
	return slices.Clone(l.names)
}

func (l *Library) Len() int { return len(l.names) }

// Compile builds every machine of the document. Function names resolve
// against reg; a nil reg means the built-ins only.
func (d *Document) Compile(reg *Registry) (*Library, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	if len(d.Machines) == 0 {
		return nil, fmt.Errorf("%w: no machines declared", ErrInvalidDocument)
	}

	lib := &Library{machines: make(map[string]*Machine, len(d.Machines))}
	for i, md := range d.Machines {
		if md.Name == "" {
			return nil, fmt.Errorf("%w: machine %d has an empty name", ErrInvalidDocument, i)
		}
		if _, dup := lib.machines[md.Name]; dup {
			return nil, &DefinitionError{Machine: md.Name, Transition: -1, Err: errors.New("duplicate machine name")}
		}
		m, err := md.compile(reg)
		if err != nil {
			return nil, err
		}
		lib.machines[md.Name] = m
		lib.names = append(lib.names, md.Name)
	}
	return lib, nil
}

func (md *MachineDef) compile(reg *Registry) (*Machine, error) {
	m := &Machine{Name: md.Name, Description: md.Description, maxSteps: md.MaxSteps}

	switch md.Fallback {
	case "", FallbackNone:
	case FallbackAccumulated:
		m.fallback = true
	default:
		return nil, &DefinitionError{Machine: md.Name, Transition: -1, Err: fmt.Errorf("unknown fallback %q", md.Fallback)}
	}
	if md.MaxSteps < 0 {
		return nil, &DefinitionError{Machine: md.Name, Transition: -1, Err: errors.New("max_steps cannot be negative")}
	}

	defs := make([]scanner.StateDef, 0, len(md.States))
	for _, sd := range md.States {
		trs := make([]scanner.Transition, 0, len(sd.Transitions))
		for j, td := range sd.Transitions {
			tr, err := td.transition(reg)
			if err != nil {
				return nil, &DefinitionError{Machine: md.Name, State: sd.Name, Transition: j, Err: err}
			}
			trs = append(trs, tr)
		}
		defs = append(defs, scanner.State(sd.Name, trs...))
	}

	table, err := scanner.Build(defs...)
	if err != nil {
		de := &DefinitionError{Machine: md.Name, Transition: -1, Err: err}
		var cerr *scanner.ConfigError
		if errors.As(err, &cerr) {
			de.State, de.Transition, de.Err = cerr.State, cerr.Transition, errors.New(cerr.Reason)
		}
		return nil, de
	}
	m.Table = table
	return m, nil
}

func (td TransitionDef) transition(reg *Registry) (scanner.Transition, error) {
	match, err := td.Match.matcher()
	if err != nil {
		return scanner.Transition{}, err
	}
	tr := scanner.Transition{Match: match, Next: td.Next}

	if a := td.Accumulate; a != nil {
		switch {
		case a.Match && a.Group == nil && a.Combine == "":
			tr.Accumulate = scanner.AccumulateMatch()
		case a.Group != nil && !a.Match && a.Combine == "":
			tr.Accumulate = scanner.AccumulateGroup(*a.Group)
		case a.Combine != "" && !a.Match && a.Group == nil:
			acc, ok := reg.Accumulate(a.Combine)
			if !ok {
				return tr, fmt.Errorf("%w: combine %q", ErrUnknownFunc, a.Combine)
			}
			tr.Accumulate = acc
		default:
			return tr, errors.New("accumulate must set exactly one of match, group or combine")
		}
	}

	if a := td.Advance; a != nil {
		set := 0
		for _, ok := range []bool{a.Char, a.Match, a.Group != nil, a.Func != ""} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return tr, errors.New("advance must set exactly one of char, match, group or func")
		}
		switch {
		case a.Char:
			tr.Advance = scanner.AdvanceChar()
		case a.Match:
			tr.Advance = scanner.AdvanceMatch()
		case a.Group != nil:
			tr.Advance = scanner.AdvanceGroup(*a.Group)
		default:
			fn, ok := reg.Advance(a.Func)
			if !ok {
				return tr, fmt.Errorf("%w: advance %q", ErrUnknownFunc, a.Func)
			}
			tr.Advance = scanner.AdvanceWith(fn)
		}
	}

	return tr, nil
}

func (m MatchDef) matcher() (scanner.Matcher, error) {
	set := 0
	for _, ok := range []bool{m.Char != "", m.Range != "", len(m.Any) > 0, m.Regex != "", m.Default} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("match must set exactly one of char, range, any, regex or default")
	}

	switch {
	case m.Default:
		return scanner.Default{}, nil
	case m.Regex != "":
		return scanner.Regex(m.Regex), nil
	case m.Char != "":
		return parseChar(m.Char)
	case m.Range != "":
		return parseRange(m.Range)
	default:
		alts := make(scanner.Alternatives, 0, len(m.Any))
		for _, item := range m.Any {
			var (
				cm  scanner.CharMatcher
				err error
			)
			if utf8.RuneCountInString(item) == 1 {
				cm, err = parseChar(item)
			} else {
				cm, err = parseRange(item)
			}
			if err != nil {
				return nil, err
			}
			alts = append(alts, cm)
		}
		return alts, nil
	}
}

func parseChar(s string) (scanner.Char, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("char %q must be exactly one character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return scanner.Char(r), nil
}

func parseRange(s string) (scanner.Range, error) {
	runes := []rune(s)
	if len(runes) != 3 || runes[1] != '-' {
		return scanner.Range{}, fmt.Errorf("range %q must have the form a-z", s)
	}
	// z-a is legal and matches nothing
	return scanner.Range{Lo: runes[0], Hi: runes[2]}, nil
}
