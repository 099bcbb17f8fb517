package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dmitrymomot/scankit/pkg/scanapi"
	"github.com/dmitrymomot/scankit/pkg/scanner"
	"github.com/dmitrymomot/scankit/pkg/scanspec"
	"github.com/dmitrymomot/scankit/pkg/source"
)

// scanCommand runs one machine over one input.
type scanCommand struct {
	*cli

	spec      string
	machine   string
	input     string
	charset   string
	state     string
	output    string
	start     int
	maxSteps  int
	normalize bool
	trace     bool
}

func registerScan(app *kingpin.Application, c *cli) {
	cmd := &scanCommand{cli: c}
	sc := app.Command("scan", "Run a machine over an input file and print the result.").Action(cmd.run)
	sc.Flag("spec", "Machine document (YAML or JSON).").Short('s').Required().StringVar(&cmd.spec)
	sc.Flag("machine", "Machine to run.").Short('m').Required().StringVar(&cmd.machine)
	sc.Flag("charset", "IANA charset of the input. Defaults to UTF-8.").StringVar(&cmd.charset)
	sc.Flag("normalize", "Convert the input to NFC before scanning.").BoolVar(&cmd.normalize)
	sc.Flag("start", "Byte offset to start scanning at.").Default("0").IntVar(&cmd.start)
	sc.Flag("state", "State to start in instead of the initial one.").StringVar(&cmd.state)
	sc.Flag("max-steps", "Stop after this many transitions. Zero keeps the machine's limit.").Default("0").IntVar(&cmd.maxSteps)
	sc.Flag("output", "Output format.").Short('o').Default("text").EnumVar(&cmd.output, "text", "json")
	sc.Flag("trace", "Log every step at debug level.").BoolVar(&cmd.trace)
	sc.Arg("input", "Input file, - for stdin.").Default("-").StringVar(&cmd.input)
}

func (cmd *scanCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	log, err := cmd.newLogger(cfg, cmd.trace)
	if err != nil {
		return err
	}
	ctx := context.Background()

	lib, err := loadFile(ctx, cmd.spec)
	if err != nil {
		return err
	}
	m, err := lib.Machine(cmd.machine)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.machine, err)
	}

	readOpts := []source.Option{source.WithCharset(cmd.charset)}
	if cmd.normalize {
		readOpts = append(readOpts, source.WithNormalize())
	}
	buf, err := source.ReadFile(cmd.input, readOpts...)
	if err != nil {
		return err
	}
	if cmd.start < 0 || cmd.start > buf.Len() {
		return fmt.Errorf("start %d is outside the input (%d bytes)", cmd.start, buf.Len())
	}
	buf.Seek(cmd.start)

	var runOpts []scanner.RunOption
	if cmd.trace {
		runOpts = append(runOpts, scanner.WithLogger(log))
	}
	if cmd.maxSteps > 0 {
		runOpts = append(runOpts, scanner.WithMaxSteps(cmd.maxSteps))
	}
	if cmd.state != "" {
		runOpts = append(runOpts, scanner.WithStartState(cmd.state))
	}

	res, err := m.Run(ctx, buf, runOpts...)
	if err != nil {
		var nat *scanner.NoApplicableTransitionError
		if errors.As(err, &nat) && nat.Line > 0 {
			return fmt.Errorf("%s:%d:%d: %w", cmd.input, nat.Line, nat.Column, err)
		}
		return err
	}
	return cmd.print(res)
}

func (cmd *scanCommand) print(res scanner.Result) error {
	if cmd.output == "json" {
		enc := json.NewEncoder(cmd.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scanapi.ScanResult{
			Machine: cmd.machine,
			Found:   res.Found,
			Exited:  res.Exited,
			Value:   res.Value,
			Pos:     res.Pos,
			Steps:   res.Steps,
		})
	}

	if !res.Found {
		fmt.Fprintln(cmd.stdout, "no result")
	} else {
		fmt.Fprintf(cmd.stdout, "value: %s\n", formatValue(res.Value))
	}
	fmt.Fprintf(cmd.stdout, "pos: %d\nsteps: %d\n", res.Pos, res.Steps)
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", v)
	case []string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

// loadFile compiles the machine document at path.
func loadFile(ctx context.Context, path string) (*scanspec.Library, error) {
	src, err := scanspec.NewDirSource(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return scanspec.Load(ctx, src, filepath.Base(path), nil)
}
