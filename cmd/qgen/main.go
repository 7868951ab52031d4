// Command qgen generates relational path holders for the entity structs of
// the given packages.
//
// Usage:
//
//	qgen [flags] [packages]
//
// Every flag has an environment counterpart, read first:
//
//	QGEN_TAG            struct tag holding persistence directives (persist)
//	QGEN_NAMING         column naming: snake, camel, pascal or property (snake)
//	QGEN_PLURAL_TABLES  pluralize derived table names (true)
//	QGEN_DRY_RUN        report files without writing them (false)
//	QGEN_LOG_LEVEL      debug, info, warn or error (info)
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/Konsultn-Engineering/rowmap/codegen"
	"github.com/Konsultn-Engineering/rowmap/schema"
)

type config struct {
	TagName      string `env:"QGEN_TAG" envDefault:"persist"`
	Naming       string `env:"QGEN_NAMING" envDefault:"snake"`
	PluralTables bool   `env:"QGEN_PLURAL_TABLES" envDefault:"true"`
	DryRun       bool   `env:"QGEN_DRY_RUN"`
	LogLevel     string `env:"QGEN_LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "qgen:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("qgen", flag.ContinueOnError)
	fs.StringVar(&cfg.TagName, "tag", cfg.TagName, "struct tag holding persistence directives")
	fs.StringVar(&cfg.Naming, "naming", cfg.Naming, "column naming: snake, camel, pascal or property")
	fs.BoolVar(&cfg.PluralTables, "plural", cfg.PluralTables, "pluralize derived table names")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "report files without writing them")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	opts, err := options(cfg)
	if err != nil {
		return err
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	pkgs, err := codegen.Load(opts, patterns...)
	if err != nil {
		return err
	}

	gen := codegen.NewGenerator(logger, cfg.DryRun)
	total := 0
	for _, pkg := range pkgs {
		if len(pkg.Entities) == 0 {
			logger.Debug("no entities", slog.String("package", pkg.PkgPath))
			continue
		}
		files, err := gen.Generate(pkg)
		if err != nil {
			return err
		}
		total += len(files)
	}
	logger.Info("done", slog.Int("packages", len(pkgs)), slog.Int("holders", total))
	return nil
}

func options(cfg config) (codegen.Options, error) {
	naming, ok := schema.ParseColumnNaming(cfg.Naming)
	if !ok {
		return codegen.Options{}, fmt.Errorf("unknown naming %q", cfg.Naming)
	}
	column := schema.NewColumnNamingStrategy(naming)
	table := schema.NewTableNamingStrategy(schema.NewColumnNamingStrategy(schema.ColumnSnakeCase), cfg.PluralTables)
	return codegen.Options{
		TagName: cfg.TagName,
		Naming:  schema.NewNamingStrategy(column, table),
	}, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
