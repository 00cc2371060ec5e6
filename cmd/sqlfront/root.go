package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/electwix/sqlfront/internal/config"
	"github.com/electwix/sqlfront/internal/fileset"
	"github.com/electwix/sqlfront/internal/logging"
	"github.com/electwix/sqlfront/internal/sql/ast"
)

type globalOptions struct {
	configPath string
	verbose    bool
	strict     bool
	logFormat  string

	cfg    config.Config
	logger logging.Logger
}

func newRootCmd(e *env) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "sqlfront",
		Short: "Parse, split and run SQL scripts",
		Long: `sqlfront tokenizes and parses SQL into an AST with positioned
diagnostics, splits scripts into executable commands and runs them
against sqlite, postgres or mysql databases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.setup(e)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (.toml, .yaml or .yml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "treat unknown configuration keys as errors")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newParseCmd(e, opts),
		newSplitCmd(e, opts),
		newExecCmd(e, opts),
		newReplCmd(e, opts),
	)
	return root
}

func (o *globalOptions) setup(e *env) error {
	format, err := logging.ParseFormat(o.logFormat)
	if err != nil {
		return err
	}
	o.logger = logging.NewSlogAdapter(logging.New(logging.Options{
		Verbose: o.verbose,
		Writer:  e.stderr,
		Format:  format,
	}))

	o.cfg = config.Default()
	if o.configPath == "" {
		return nil
	}
	res, err := config.Load(o.configPath, config.LoadOptions{Strict: o.strict})
	if err != nil {
		return err
	}
	for _, warning := range res.Warnings {
		o.logger.Warn(warning)
	}
	o.cfg = res.Config
	return nil
}

// loadSources reads the files named by patterns, or by the configured
// sources when patterns is empty. "-" reads stdin.
func (o *globalOptions) loadSources(e *env, patterns []string) ([]fileset.Source, error) {
	base := "."
	if len(patterns) == 0 {
		patterns = o.cfg.Sources
		base = o.cfg.BaseDir
	}
	if len(patterns) == 0 {
		return nil, fileset.ErrNoPatterns
	}

	var sources []fileset.Source
	for _, pattern := range patterns {
		if pattern == "-" {
			src, err := fileset.ReadFile("-", e.stdin, o.cfg.MaxInputBytes)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
			continue
		}
		dir, glob := base, pattern
		if filepath.IsAbs(pattern) {
			dir, glob = filepath.Split(pattern)
		}
		resolver, err := fileset.NewOSResolver(dir)
		if err != nil {
			return nil, err
		}
		loaded, err := resolver.Load([]string{glob}, o.cfg.MaxInputBytes)
		if err != nil {
			return nil, err
		}
		for _, src := range loaded {
			if !slices.ContainsFunc(sources, func(s fileset.Source) bool { return s.Path == src.Path }) {
				sources = append(sources, src)
			}
		}
	}
	return sources, nil
}

// parseVars turns name:type flags into a variable table.
func parseVars(decls []string) (*ast.VarTable, error) {
	vars := ast.NewVarTable()
	for _, decl := range decls {
		name, typ, ok := strings.Cut(decl, ":")
		name = strings.TrimPrefix(strings.TrimSpace(name), "@")
		if !ok || name == "" || strings.TrimSpace(typ) == "" {
			return nil, fmt.Errorf("invalid variable %q (want name:type)", decl)
		}
		vars.Declare(name, strings.TrimSpace(typ))
	}
	return vars, nil
}
