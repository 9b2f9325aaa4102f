package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/chazu/facet/pkg/tree"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool
	jsonOutput bool

	cfg      config.Config
	log      *slog.Logger
	registry *oracle.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{registry: oracle.DefaultRegistry()}

	root := &cobra.Command{
		Use:   "facet",
		Short: "Evaluate implicit-surface programs",
		Long: `facet evaluates shape programs written in a small Lisp DSL.

Programs build an expression tree from axis leaves, arithmetic and named
oracles, for example:

  (fmax (oracle "CubeOracle") (sub (fabs (z)) 0.5))

Examples:
  facet oracles                      # List the available oracles
  facet eval shape.lisp --at 1,0,0   # Value, ambiguity and features
  facet sample shape.lisp --json     # Sample the configured grid
  facet mesh shape.lisp -o mesh.json # Marching cubes mesh as JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.logJSON, "log-json", false, "emit logs as JSON")
	pf.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newOraclesCmd(a),
		newEvalCmd(a),
		newSampleCmd(a),
		newMeshCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	if a.logJSON {
		h = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	}
	a.log = slog.New(h)
	a.log.Debug("configuration loaded",
		slog.String("path", a.configPath),
		slog.Float64("resolution", cfg.Resolution),
		slog.Int("workers", cfg.Workers),
	)
	return nil
}

// loadTree reads a DSL program from path ("-" for stdin) and evaluates it.
func (a *app) loadTree(cmd *cobra.Command, path string) (tree.Tree, error) {
	var (
		src []byte
		err error
	)
	if path == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return tree.Tree{}, fmt.Errorf("read program: %w", err)
	}

	eng := engine.NewEngine(engine.WithRegistry(a.registry), engine.WithTimeout(a.cfg.EvalTimeout))
	t, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return tree.Tree{}, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return tree.Tree{}, fmt.Errorf("evaluate %s: %s", path, strings.Join(msgs, "; "))
	}
	if !t.Valid() {
		return tree.Tree{}, errors.New("program produced no shape")
	}

	a.log.Debug("program evaluated",
		slog.String("path", path),
		slog.Int("nodes", t.Size()),
		slog.Int("oracles", len(t.Oracles())),
	)
	return t, nil
}
