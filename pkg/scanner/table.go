package scanner

import (
	"errors"
	"fmt"

	"github.com/grafana/regexp"
)

// Exit is the terminal pseudo-state. Taking a transition to Exit ends the
// scan with the accumulated value. No state may be named Exit.
const Exit = "exit"

const exitState = -1

// StateDef declares a state and its ordered transitions.
type StateDef struct {
	Name        string
	Transitions []Transition
}

// State is a shorthand for building a StateDef.
func State(name string, transitions ...Transition) StateDef {
	return StateDef{Name: name, Transitions: transitions}
}

type compiledTransition struct {
	index int // position in the declared transition list
	char  charRule
	re    *regexp.Regexp
	acc   Accumulate
	adv   Advance
	next  int
}

// compiledState keeps transitions partitioned by matcher kind, each bucket
// in declaration order.
type compiledState struct {
	name  string
	regex []compiledTransition
	chars []compiledTransition
	def   *compiledTransition
}

// Table is an immutable, validated state table. It holds no run state and
// is safe to share between concurrent scans.
type Table struct {
	states []compiledState
	index  map[string]int
}

// Build validates the definitions and compiles them into a Table. The first
// definition is the initial state. Any configuration error aborts the build.
func Build(defs ...StateDef) (*Table, error) {
	if len(defs) == 0 {
		return nil, newConfigError("", -1, "no states declared")
	}

	t := &Table{
		states: make([]compiledState, len(defs)),
		index:  make(map[string]int, len(defs)),
	}

	for i, def := range defs {
		switch {
		case def.Name == "":
			return nil, newConfigError("", -1, "state %d has an empty name", i)
		case def.Name == Exit:
			return nil, newConfigError(def.Name, -1, "'%s' is reserved for the terminal transition", Exit)
		}
		if _, dup := t.index[def.Name]; dup {
			return nil, newConfigError(def.Name, -1, "duplicate state name")
		}
		t.index[def.Name] = i
	}

	for i, def := range defs {
		if len(def.Transitions) == 0 {
			return nil, newConfigError(def.Name, -1, "state has no transitions")
		}
		st := compiledState{name: def.Name}
		for j, tr := range def.Transitions {
			ct, err := t.compileTransition(def.Name, j, tr)
			if err != nil {
				return nil, err
			}
			switch tr.Match.kind() {
			case kindRegex:
				st.regex = append(st.regex, ct)
			case kindChar:
				st.chars = append(st.chars, ct)
			case kindDefault:
				// Later defaults are unreachable; the first declared wins.
				if st.def == nil {
					st.def = &ct
				}
			}
		}
		t.states[i] = st
	}

	return t, nil
}

func (t *Table) compileTransition(state string, i int, tr Transition) (compiledTransition, error) {
	ct := compiledTransition{index: i, acc: tr.Accumulate, adv: tr.Advance}

	if tr.Match == nil {
		return ct, newConfigError(state, i, "matcher cannot be nil")
	}

	switch tr.Next {
	case Exit:
		ct.next = exitState
	case "":
		return ct, newConfigError(state, i, "next state is empty")
	default:
		next, ok := t.index[tr.Next]
		if !ok {
			return ct, newConfigError(state, i, "next state '%s' is not declared", tr.Next)
		}
		ct.next = next
	}

	groups := 0
	switch m := tr.Match.(type) {
	case Regex:
		// validate the pattern on its own so it cannot escape the anchor group
		raw, err := regexp.Compile(string(m))
		if err != nil {
			return ct, newConfigError(state, i, "invalid regex %q: %v", string(m), err)
		}
		re, err := regexp.Compile(`\A(?:` + string(m) + `)`)
		if err != nil || re.NumSubexp() != raw.NumSubexp() {
			return ct, newConfigError(state, i, "invalid regex %q: cannot be anchored", string(m))
		}
		ct.re = re
		groups = raw.NumSubexp()
	case CharMatcher:
		rule, err := compileCharRule(m)
		if err != nil {
			return ct, newConfigError(state, i, "%v", err)
		}
		ct.char = rule
	case Default:
	default:
		return ct, newConfigError(state, i, "unsupported matcher %T", tr.Match)
	}

	switch tr.Accumulate.kind {
	case accumulateGroup:
		if err := checkGroup(tr.Match, tr.Accumulate.group, groups); err != nil {
			return ct, newConfigError(state, i, "accumulate: %v", err)
		}
	case accumulateCombine:
		if tr.Accumulate.combine == nil {
			return ct, newConfigError(state, i, "accumulate: combine function cannot be nil")
		}
	case accumulateMap:
		if tr.Accumulate.mapper == nil {
			return ct, newConfigError(state, i, "accumulate: map function cannot be nil")
		}
	}

	switch tr.Advance.kind {
	case advanceGroup:
		if err := checkGroup(tr.Match, tr.Advance.group, groups); err != nil {
			return ct, newConfigError(state, i, "advance: %v", err)
		}
	case advanceFunc:
		if tr.Advance.fn == nil {
			return ct, newConfigError(state, i, "advance: function cannot be nil")
		}
	}

	return ct, nil
}

func checkGroup(m Matcher, group, groups int) error {
	switch {
	case m.kind() != kindRegex:
		return errors.New("capture groups require a regex matcher")
	case group < 0:
		return errors.New("capture group index cannot be negative")
	case group > groups:
		return fmt.Errorf("capture group %d does not exist in %s", group, m)
	}
	return nil
}

// Initial returns the name of the initial state.
func (t *Table) Initial() string {
	return t.states[0].name
}

// States returns the state names in declaration order.
func (t *Table) States() []string {
	names := make([]string, len(t.states))
	for i := range t.states {
		names[i] = t.states[i].name
	}
	return names
}

// Has reports whether the table declares a state with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}
