package codegen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

const filePerm = 0o644

// Package is a loaded package with its entities.
type Package struct {
	Name     string
	PkgPath  string
	Dir      string
	Entities []Entity
}

// Load loads the packages matching patterns and extracts their entities.
func Load(opts Options, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{Mode: LoadMode}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		entities, err := Extract(pkg.Types, pkg.Syntax, opts)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.PkgPath, err)
		}
		dir := ""
		if len(pkg.GoFiles) > 0 {
			dir = filepath.Dir(pkg.GoFiles[0])
		}
		out = append(out, &Package{Name: pkg.Name, PkgPath: pkg.PkgPath, Dir: dir, Entities: entities})
	}
	return out, nil
}

// Generator renders and writes holders.
type Generator struct {
	logger *slog.Logger
	dryRun bool
}

func NewGenerator(logger *slog.Logger, dryRun bool) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{logger: logger, dryRun: dryRun}
}

// Generate renders the holders of pkg and writes them into its directory.
// It returns the rendered files.
func (g *Generator) Generate(pkg *Package) ([]GeneratedFile, error) {
	files := make([]GeneratedFile, 0, len(pkg.Entities))
	for _, entity := range pkg.Entities {
		file, err := Render(pkg.Name, entity)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.PkgPath, err)
		}
		files = append(files, file)
	}

	if g.dryRun {
		for _, file := range files {
			g.logger.Info("would write holder", slog.String("package", pkg.PkgPath), slog.String("file", file.Filename))
		}
		return files, nil
	}
	if err := WriteFiles(files, pkg.Dir); err != nil {
		return nil, err
	}
	for _, file := range files {
		g.logger.Info("wrote holder", slog.String("package", pkg.PkgPath), slog.String("file", file.Filename))
	}
	return files, nil
}

// WriteFiles writes all generated files to the output directory.
func WriteFiles(files []GeneratedFile, outputDir string) error {
	for _, file := range files {
		outputPath := filepath.Join(outputDir, file.Filename)
		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}
	return nil
}
