package main

import (
	"fmt"
	"io"
	"os"

	"appendlist/internal/functional"
	"appendlist/internal/report"
	"appendlist/internal/state"
	"appendlist/internal/workload"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	// where are we?
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	os.Exit(do(cwd, os.Args, os.Stdout, os.Stderr))
}

// do runs the app and maps its outcome to an exit code
func do(cwd string, args []string, stdout, stderr io.Writer) int {
	// create a parser
	parser := hclparse.NewParser()
	color := colorEnabled(stderr)
	err := App(cwd, parser, &color, stdout, stderr).Run(args)
	// success, stop early
	if err == nil {
		return 0
	}

	// did we get a diagnostic?
	if diags, ok := err.(hcl.Diagnostics); ok {
		writer := hcl.NewDiagnosticTextWriter(stderr, parser.Files(), 78, color)
		writer.WriteDiagnostics(diags)
		return 2
	}

	// random err
	fmt.Fprintln(stderr, err)
	return 3
}

const (
	Config  = "config"
	Verbose = "verbose"
	NoColor = "no-color"
	Verify  = "verify"
)

var (
	ConfigFlag = &cli.StringFlag{
		Name:    Config,
		Aliases: []string{"c"},
		Value:   state.DefaultPattern,
		Usage:   "Config file or glob pattern of config files",
	}
	VerboseFlag = &cli.BoolFlag{
		Name:    Verbose,
		Aliases: []string{"v"},
		Usage:   "Enable verbose logging",
	}
	NoColorFlag = &cli.BoolFlag{
		Name:  NoColor,
		Usage: "Disable colored output",
	}
	VerifyFlag = &cli.BoolFlag{
		Name:  Verify,
		Usage: "Check that no appended value was lost or duplicated",
	}
)

func App(cwd string, parser *hclparse.Parser, color *bool, stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "appendlist",
		Usage:     "Append integers to a shared list from concurrent workers",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			ConfigFlag,
			VerboseFlag,
			NoColorFlag,
			VerifyFlag,
		},
		Before: func(c *cli.Context) error {
			*color = *color && !c.Bool(NoColor)
			initLogging(stderr, c.Bool(Verbose), *color)
			return nil
		},
	}

	app.Commands = []*cli.Command{{
		Name:  "config",
		Usage: "Print the effective config",
		Action: func(c *cli.Context) error {
			config, err := loadConfig(c, parser, cwd, *color, stderr)
			if err != nil {
				return err
			}

			_, err = stdout.Write(config.Encode())
			return err
		},
	}}

	app.Action = func(c *cli.Context) error {
		if c.Args().Present() {
			return unknownCommand(c.Args().First(), app.Commands)
		}

		config, err := loadConfig(c, parser, cwd, *color, stderr)
		if err != nil {
			return err
		}

		if c.Bool(Verify) {
			config.Verify = true
		}

		log.WithFields(log.Fields{
			"workers":     config.Workers,
			"per_worker":  config.PerWorker,
			"parallelism": config.Parallelism,
		}).Debug("starting workers")
		result, err := workload.Run(c.Context, config)
		if err != nil {
			return err
		}

		reporter := report.New(stdout, stderr, *color)
		for _, reading := range result.Readings {
			reporter.Value(reading.Index, reading.Value)
		}

		// an invalid index is reported but it is not fatal
		if result.Failure != nil {
			reporter.Failure(result.Failure)
		}

		reporter.Total(result.Total)
		return nil
	}

	return app
}

// loadConfig only complains about missing files when --config was given.
// Warnings are written right away, errors are returned as hcl.Diagnostics
func loadConfig(c *cli.Context, parser *hclparse.Parser, cwd string, color bool, stderr io.Writer) (*state.Config, error) {
	config, diags := state.Load(parser, cwd, c.String(Config), c.IsSet(Config))
	if diags.HasErrors() {
		return nil, diags
	}

	if len(diags) > 0 {
		writer := hcl.NewDiagnosticTextWriter(stderr, parser.Files(), 78, color)
		if err := writer.WriteDiagnostics(diags); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// colorEnabled is true when out is a terminal and NO_COLOR is not set
func colorEnabled(out io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func unknownCommand(name string, commands []*cli.Command) error {
	names := functional.Map(commands, func(command *cli.Command) string {
		return command.Name
	})

	if suggestion, ok := functional.Suggest(name, names); ok {
		return errors.Errorf(`unknown command "%s", did you mean "%s"?`, name, suggestion)
	}

	return errors.Errorf(`unknown command "%s"`, name)
}

// initLogging prepares logrus with sensible defaults
func initLogging(out io.Writer, verbose, color bool) {
	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{DisableColors: !color})
	// Only log the warning severity or above.
	log.SetLevel(log.WarnLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}
