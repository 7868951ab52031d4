// Package codegen generates relational path holders for entity structs.
//
// An entity is a struct type whose doc comment carries the directive
//
//	//rowmap:entity
//
// optionally followed by table=<name>. For every entity the generator writes
// q_<entity>.go next to it, declaring the holder type Q<Entity>, its
// singleton path and an init function registering both with relpath.Default.
package codegen

import (
	"fmt"
	goast "go/ast"
	"go/types"
	"reflect"
	"sort"
	"strings"

	"github.com/Konsultn-Engineering/rowmap/schema"
)

// Directive marks entity structs.
const Directive = "//rowmap:entity"

// Entity is a struct type to generate a holder for.
type Entity struct {
	Name    string // Go type name
	Table   string
	Static  string // name of the singleton path, see relpath.HolderName
	Columns []Column
}

// Column is one column of an entity path.
type Column struct {
	Field string // Go field name of the typed accessor on the holder
	Name  string // column name
}

// Options configure extraction.
type Options struct {
	TagName string
	Naming  schema.NamingStrategy
}

func (o Options) withDefaults() Options {
	if o.TagName == "" {
		o.TagName = schema.DefaultTagName
	}
	if o.Naming == nil {
		o.Naming = schema.DefaultNamingStrategy()
	}
	return o
}

// Extract finds the entities declared in files and derives their columns
// from the type-checked package. Entities are returned sorted by name.
func Extract(pkg *types.Package, files []*goast.File, opts Options) ([]Entity, error) {
	opts = opts.withDefaults()
	parser := schema.NewTagParser(opts.TagName, opts.Naming)

	var entities []Entity
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*goast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*goast.TypeSpec)
				if !ok {
					continue
				}
				args, ok := directive(ts.Doc)
				if !ok && len(gen.Specs) == 1 {
					args, ok = directive(gen.Doc)
				}
				if !ok {
					continue
				}

				entity, err := extractEntity(pkg, ts.Name.Name, args, parser, opts.Naming)
				if err != nil {
					return nil, err
				}
				entities = append(entities, entity)
			}
		}
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	return entities, nil
}

// directive returns the arguments of the entity directive in doc.
func directive(doc *goast.CommentGroup) (map[string]string, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		args := make(map[string]string)
		for _, kv := range strings.Fields(rest) {
			k, v, _ := strings.Cut(kv, "=")
			args[k] = v
		}
		return args, true
	}
	return nil, false
}

func extractEntity(pkg *types.Package, name string, args map[string]string, parser *schema.TagParser, naming schema.NamingStrategy) (Entity, error) {
	obj, ok := pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		return Entity{}, fmt.Errorf("%s: not a type", name)
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return Entity{}, fmt.Errorf("%s: %s is not a struct type", Directive, name)
	}

	entity := Entity{
		Name:   name,
		Table:  naming.TableName(name),
		Static: schema.Decapitalize(name),
	}
	if table := args["table"]; table != "" {
		entity.Table = table
	}

	c := &collector{parser: parser, fields: reservedFields(), columns: make(map[string]bool)}
	if err := c.collect(st, "", []*types.Struct{st}); err != nil {
		return Entity{}, fmt.Errorf("%s: %w", name, err)
	}
	entity.Columns = c.out
	return entity, nil
}

// collector flattens the columns of a struct and its embedded values.
type collector struct {
	parser  *schema.TagParser
	out     []Column
	fields  map[string]bool // accessor names in use
	columns map[string]bool // column names in use
}

func (c *collector) collect(st *types.Struct, prefix string, chain []*types.Struct) error {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Anonymous() {
			continue
		}

		tag, err := c.parser.ParseTag(f.Name(), reflect.StructTag(st.Tag(i)))
		if err != nil {
			return err
		}

		switch {
		case tag.Skip, tag.Collection:
			continue

		case tag.Embedded:
			nested, ok := structOf(f.Type())
			if !ok {
				return fmt.Errorf("embedded field %s is not a struct", f.Name())
			}
			for _, outer := range chain {
				if outer == nested {
					return fmt.Errorf("embedded field %s: embedded cycle", f.Name())
				}
			}
			if err := c.collect(nested, prefix+f.Name(), append(chain[:len(chain):len(chain)], nested)); err != nil {
				return err
			}

		default:
			c.add(prefix, f.Name(), tag.Column)
		}
	}
	return nil
}

func (c *collector) add(prefix, field, column string) {
	if c.columns[column] {
		return
	}
	c.columns[column] = true

	name := field
	if c.fields[name] && prefix != "" {
		name = prefix + field
	}
	if c.fields[name] || !goast.IsExported(name) {
		name = schema.ToPascalCase(column)
	}
	for base, n := name, 2; c.fields[name]; n++ {
		name = fmt.Sprintf("%s%d", base, n)
	}
	c.fields[name] = true
	c.out = append(c.out, Column{Field: name, Name: column})
}

// reservedFields are the selectors promoted from *relpath.Base; an accessor
// with one of these names would hide them.
func reservedFields() map[string]bool {
	return map[string]bool{"Base": true, "Table": true, "Columns": true, "Column": true}
}

func structOf(t types.Type) (*types.Struct, bool) {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	st, ok := t.Underlying().(*types.Struct)
	return st, ok
}
