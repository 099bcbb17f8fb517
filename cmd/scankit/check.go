package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"
)

// checkCommand compiles machine documents and reports definition errors.
type checkCommand struct {
	*cli
	specs []string
}

func registerCheck(app *kingpin.Application, c *cli) {
	cmd := &checkCommand{cli: c}
	cc := app.Command("check", "Validate machine documents.").Action(cmd.run)
	cc.Flag("spec", "Machine document to check. Repeatable.").Short('s').Required().StringsVar(&cmd.specs)
}

func (cmd *checkCommand) run(_ *kingpin.ParseContext) error {
	ctx := context.Background()
	failed := 0
	for _, path := range cmd.specs {
		lib, err := loadFile(ctx, path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.stdout, "FAIL %s\n\t%v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.stdout, "ok   %s (%d machines: %s)\n", path, lib.Len(), strings.Join(lib.Names(), ", "))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents are invalid", failed, len(cmd.specs))
	}
	return nil
}
