// Command hintfuldiff reverses, validates and converts unified, hintful and
// compat diffs. Each operation is a sub-command; a link to the binary named
// after an operation runs that operation directly, e.g.
//
//	ln -s hintfuldiff validate-compat-diff
//	validate-compat-diff < change.diff
//
// Inputs are file paths, s3://bucket/key locations, or "-" for standard
// input (the default). Several inputs are processed concurrently and their
// outputs written in order, concatenated.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicolagi/hintful/internal/config"
	"github.com/nicolagi/hintful/internal/diagnostic"
	"github.com/nicolagi/hintful/internal/pipeline"
	"github.com/nicolagi/hintful/internal/storage"
	"github.com/nicolagi/hintful/internal/validate"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// To set this at build time, use go build -ldflags '-X main.version=something'.
var version = "unknown"

type usageError struct {
	error
}

type app struct {
	stdio  storage.Stdio
	stderr io.Writer

	// Flags.
	configPath   string
	logLevel     string
	output       string
	roundTrip    bool
	snippetScope string

	c *config.C
	// Set once a sub-command starts running; errors before that are usage errors.
	running bool
}

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		stdio:  storage.Stdio{In: stdin, Out: stdout},
		stderr: stderr,
	}
	root := a.rootCommand()
	argv := args[1:]
	if _, ok := pipeline.Lookup(filepath.Base(args[0])); ok {
		argv = append([]string{filepath.Base(args[0])}, argv...)
	}
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintln(stderr, err)
	var u usageError
	if !a.running || errors.As(err, &u) {
		return 2
	}
	return diagnostic.ExitStatus(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hintfuldiff",
		Short:         "Reverse, validate and convert unified, hintful and compat diffs",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath, "configuration `file`")
	flags.StringVar(&a.logLevel, "verbosity", "", "sets the log `level`, among "+strings.Join(levels, ", ")+" (default from configuration, else warning)")
	flags.StringVarP(&a.output, "output", "o", storage.StdioLocation, "output `location`: a path, s3://bucket/key, or - for standard output")
	flags.BoolVar(&a.roundTrip, "roundtrip", false, "fail unless formatting the parsed input reproduces it")
	flags.StringVar(&a.snippetScope, "snippet-scope", "", "where snippet names must be unique: global or file (default from configuration)")
	for _, name := range pipeline.Names() {
		root.AddCommand(a.operationCommand(name))
	}
	return root
}

func (a *app) operationCommand(name string) *cobra.Command {
	op, _ := pipeline.Lookup(name)
	return &cobra.Command{
		Use:   name + " [input...]",
		Short: describe(op),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.running = true
			if err := a.setup(); err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{storage.StdioLocation}
			}
			return a.runOperation(cmd.Context(), op, args)
		},
	}
}

func describe(op pipeline.Operation) string {
	verb, rest, _ := strings.Cut(op.Name, "-")
	rest = strings.ReplaceAll(rest, "-", " ")
	switch verb {
	case "convert":
		return "Convert a " + strings.TrimSuffix(rest, " diff")
	default:
		return strings.ToUpper(verb[:1]) + verb[1:] + " a " + rest
	}
}

// setup loads the configuration and configures logging. Flags take
// precedence over the configuration file.
func (a *app) setup() error {
	c, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.c = c
	log.SetOutput(a.stderr)
	if c.LogFormat == "text" {
		log.SetFormatter(&log.TextFormatter{})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level := c.Verbosity
	if a.logLevel != "" {
		level = a.logLevel
	}
	ll, err := log.ParseLevel(level)
	if err != nil {
		return usageError{errors.Wrapf(err, "could not parse log level %q", level)}
	}
	log.SetLevel(ll)
	if a.snippetScope == "" {
		a.snippetScope = c.SnippetScope
	}
	if _, err := validate.ParseScope(a.snippetScope); err != nil {
		return usageError{err}
	}
	return nil
}

// runOperation processes the inputs concurrently, at most as many at once
// as configured. On the first error the remaining inputs are abandoned and
// nothing is written.
func (a *app) runOperation(ctx context.Context, op pipeline.Operation, inputs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scope, _ := validate.ParseScope(a.snippetScope)
	outputs := make([]bytes.Buffer, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.c.Parallelism)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			err := a.runInput(ctx, op, input, &outputs[i], pipeline.Options{
				Input:        input,
				SnippetScope: scope,
				RoundTrip:    a.roundTrip,
			})
			if err != nil {
				return errors.Wrapf(err, "%s: %s", op.Name, input)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if !op.Output {
		return nil
	}
	var all []byte
	for _, b := range outputs {
		all = append(all, b.Bytes()...)
	}
	store, key, err := storage.Locate(a.output, a.c, a.stdio)
	if err != nil {
		return usageError{err}
	}
	return store.Put(key, all)
}

func (a *app) runInput(ctx context.Context, op pipeline.Operation, input string, w io.Writer, o pipeline.Options) error {
	store, key, err := storage.Locate(input, a.c, a.stdio)
	if err != nil {
		return usageError{err}
	}
	r, err := store.Get(key)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.WithFields(log.Fields{
				"input": input,
				"cause": err,
			}).Warning("Could not close input")
		}
	}()
	return op.Run(ctx, r, w, o)
}
