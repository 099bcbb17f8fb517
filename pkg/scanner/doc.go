// Package scanner provides a declarative state-machine engine for scanning
// character input.
//
// A Table is a list of named states, each holding an ordered list of
// transitions. On every step the engine inspects the input at the cursor,
// picks the transition whose matcher accepts, optionally appends the matched
// text to the result, optionally moves the cursor and switches to the next
// state. The scan ends when a transition to Exit is taken or the input runs
// out.
//
// # Matchers
//
//   - Char accepts one rune, Range accepts an inclusive rune interval and
//     Alternatives accepts any of its Char or Range members.
//   - Regex accepts when the pattern matches anchored at the cursor.
//   - Default accepts anything.
//
// Priority is fixed: regex transitions are tried first, then character
// transitions, then the default. Inside each group the first declared
// transition wins, so declaration order only matters between matchers of the
// same kind.
//
// # Architecture
//
// Build validates the definitions once, compiles regexes, flattens
// alternatives into a bitmap plus sorted interval list and partitions every
// state's transitions by matcher kind. The resulting Table is immutable;
// each call to Run keeps its state, cursor and accumulator on its own stack,
// so one Table serves any number of concurrent scans.
//
// # Usage
//
//	import "github.com/dmitrymomot/scankit/pkg/scanner"
//
//	table := scanner.MustNew(
//	    scanner.WithState("start",
//	        scanner.On(scanner.Char('"'), "read", scanner.Skip()),
//	        scanner.Otherwise("start", scanner.WithAdvance(scanner.AdvanceChar())),
//	    ),
//	    scanner.WithState("read",
//	        scanner.On(scanner.Char('"'), scanner.Exit, scanner.Skip()),
//	        scanner.Otherwise("read", scanner.Collect()),
//	    ),
//	)
//
//	res, err := table.Scan(ctx, `he said "hi" now`)
//	// res.Text() == "hi"
//
// # Accumulation
//
// Text accumulates into a string. AccumulateWith hands the accumulator and
// the matched text to a CombineFunc whose return value becomes the new
// accumulator, which may be any type. A []string accumulator grows by one
// element per built-in append.
//
// # End of Input
//
// Running out of input is not an error. Without a fallback the Result has
// Found set to false; WithFallback computes a value from the accumulator
// instead.
//
// # Error Handling
//
// Build reports malformed definitions as *ConfigError values matching
// ErrInvalidConfig. Run fails with *NoApplicableTransitionError when a state
// has no transition for the input at the cursor:
//
//	if scanner.IsNoApplicableTransitionError(err) { /* ... */ }
//	if errors.Is(err, scanner.ErrStepLimit)        { /* ... */ }
//
// # Cancellation
//
// Run checks the context every few hundred steps. WithMaxSteps bounds the
// number of transitions, which guards against machines that loop without
// consuming input.
package scanner
