package meta

import (
	goast "go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"sync"
)

// NameDiscoverer recovers constructor parameter names on a best-effort basis.
// An empty entry, or a nil result, means the name is not available.
type NameDiscoverer interface {
	ParameterNames(c *Constructor) []string
}

// Explicit returns the names given at registration.
type Explicit struct{}

func (Explicit) ParameterNames(c *Constructor) []string {
	if len(c.Names) != c.Arity() {
		return nil
	}
	return c.Names
}

// Chain asks each discoverer in turn and returns the first complete answer.
// A partial answer is kept only when nothing better is found.
type Chain []NameDiscoverer

func (ch Chain) ParameterNames(c *Constructor) []string {
	var partial []string
	for _, d := range ch {
		names := d.ParameterNames(c)
		if len(names) != c.Arity() {
			continue
		}
		if complete(names) {
			return names
		}
		if partial == nil {
			partial = names
		}
	}
	return partial
}

func complete(names []string) bool {
	for _, n := range names {
		if n == "" {
			return false
		}
	}
	return true
}

// SourceNames reads parameter names from the Go source file the runtime
// reports for a function. It only works where the source is present, which
// is the case for tests and for binaries run from their module.
type SourceNames struct {
	mu    sync.Mutex
	fset  *token.FileSet
	files map[string]*goast.File // nil entry: unreadable
}

func NewSourceNames() *SourceNames {
	return &SourceNames{fset: token.NewFileSet(), files: make(map[string]*goast.File)}
}

func (s *SourceNames) ParameterNames(c *Constructor) []string {
	if c.Literal() {
		return nil
	}
	fn := runtime.FuncForPC(c.Func().Pointer())
	if fn == nil || isClosure(fn.Name()) {
		return nil
	}
	file, _ := fn.FileLine(fn.Entry())
	f := s.parse(file)
	if f == nil {
		return nil
	}

	name := shortName(fn.Name())
	for _, decl := range f.Decls {
		fd, ok := decl.(*goast.FuncDecl)
		if !ok || fd.Recv != nil || fd.Name.Name != name {
			continue
		}
		names := paramNames(fd.Type.Params)
		if len(names) != c.Arity() {
			return nil
		}
		return names
	}
	return nil
}

func (s *SourceNames) parse(path string) *goast.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.files[path]; ok {
		return f
	}
	f, err := parser.ParseFile(s.fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		f = nil
	}
	s.files[path] = f
	return f
}

func paramNames(params *goast.FieldList) []string {
	var names []string
	if params == nil {
		return names
	}
	for _, field := range params.List {
		if len(field.Names) == 0 {
			names = append(names, "")
			continue
		}
		for _, ident := range field.Names {
			if ident.Name == "_" {
				names = append(names, "")
			} else {
				names = append(names, ident.Name)
			}
		}
	}
	return names
}

// closureName matches compiler names of function literals: pkg.Outer.func1,
// pkg.init.func2.1, pkg.glob..func3.
var closureName = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

func isClosure(fullName string) bool {
	return closureName.MatchString(fullName)
}

// shortName strips the package path and type arguments from a runtime
// function name: example.com/m/pkg.NewMoney[...] -> NewMoney.
func shortName(fullName string) string {
	name, _, _ := strings.Cut(fullName, "[")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return fn.Type().String()
}

// generatedSource reports whether the function behind fn is declared in a
// file carrying the "Code generated ... DO NOT EDIT." header.
func generatedSource(fn reflect.Value) bool {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return false
	}
	file, _ := f.FileLine(f.Entry())
	header, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false
	}
	return goast.IsGenerated(header)
}

// isSynthetic reports whether a registered function is a compiler or
// generator artifact.
func isSynthetic(c *Constructor) bool {
	if c.Literal() {
		return false
	}
	return isClosure(c.Name) || generatedSource(c.Func())
}
