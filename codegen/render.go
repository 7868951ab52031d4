package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"text/template"

	"github.com/Konsultn-Engineering/rowmap/relpath"
	"github.com/Konsultn-Engineering/rowmap/schema"
)

// GeneratedFile is a rendered holder.
type GeneratedFile struct {
	Filename string
	Content  []byte
}

var holderTemplate = template.Must(template.New("holder").Parse(`// Code generated by qgen. DO NOT EDIT.

package {{.Package}}

import (
	"reflect"

	"github.com/Konsultn-Engineering/rowmap/ast"
	"github.com/Konsultn-Engineering/rowmap/relpath"
)

// {{.Holder}} is the relational path of {{.Entity.Name}}.
type {{.Holder}} struct {
	*relpath.Base
{{range .Entity.Columns}}
	{{.Field}} *ast.Column{{end}}
}

// {{.Var}} is the {{.Entity.Table}} path of {{.Entity.Name}}.
var {{.Var}} = new{{.Holder}}({{printf "%q" .Entity.Table}}, "")

// new{{.Holder}} creates a {{.Entity.Name}} path over table, qualified by alias when set.
func new{{.Holder}}(table, alias string) *{{.Holder}} {
	base := relpath.New(table, alias{{range .Entity.Columns}}, {{printf "%q" .Name}}{{end}})
	return &{{.Holder}}{
		Base: base,
{{- range .Entity.Columns}}
		{{.Field}}: base.Column({{printf "%q" .Name}}),
{{- end}}
	}
}

func init() {
	relpath.Default.Register(reflect.TypeFor[{{.Holder}}](), relpath.Static{Name: {{printf "%q" .Entity.Static}}, Value: {{.Var}}})
}
`))

type holderData struct {
	Package string
	Holder  string
	Var     string
	Entity  Entity
}

// Render produces the holder source of entity in package pkgName.
func Render(pkgName string, entity Entity) (GeneratedFile, error) {
	if len(entity.Columns) == 0 {
		return GeneratedFile{}, fmt.Errorf("%s has no columns", entity.Name)
	}

	data := holderData{
		Package: pkgName,
		Holder:  relpath.HolderPrefix + entity.Name,
		Var:     entity.Static,
		Entity:  entity,
	}
	if token.IsKeyword(data.Var) {
		data.Var += "_"
	}

	var buf bytes.Buffer
	if err := holderTemplate.Execute(&buf, data); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template: %w", err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("formatting %s: %w", entity.Name, err)
	}

	return GeneratedFile{
		Filename: "q_" + schema.ToSnakeCase(entity.Name) + ".go",
		Content:  formatted,
	}, nil
}
