// Command scankit runs declarative scanning machines from the command line
// or as an HTTP service.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// cli holds the global flags shared by every command.
type cli struct {
	envFiles []string
	logLevel string
	stdout   io.Writer
	stderr   io.Writer
}

func newApp(stdout, stderr io.Writer) *kingpin.Application {
	c := &cli{stdout: stdout, stderr: stderr}

	app := kingpin.New("scankit", "Declarative state-machine scanner.")
	app.HelpFlag.Short('h')
	app.Flag("env-file", "Load environment variables from this file before reading configuration. Repeatable.").StringsVar(&c.envFiles)
	app.Flag("log-level", "Override the log level (debug, info, warn, error).").StringVar(&c.logLevel)

	registerScan(app, c)
	registerCheck(app, c)
	registerServe(app, c)
	return app
}
