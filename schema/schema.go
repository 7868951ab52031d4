package schema

import (
	"fmt"
	"reflect"
)

// Context holds the naming configuration used to inspect entity types.
// A Context is immutable after New and safe for concurrent use.
type Context struct {
	namingStrategy NamingStrategy
	tagName        string
	parser         *TagParser
}

type Option func(*Context)

// WithNamingStrategy sets the naming strategy for database column mapping
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(ctx *Context) { ctx.namingStrategy = strategy }
}

// WithTagName sets the struct tag name read for persistence directives
func WithTagName(tagName string) Option {
	return func(ctx *Context) { ctx.tagName = tagName }
}

// New creates a schema context with configuration.
func New(options ...Option) *Context {
	ctx := &Context{
		namingStrategy: DefaultNamingStrategy(),
		tagName:        DefaultTagName,
	}
	for _, opt := range options {
		opt(ctx)
	}
	ctx.parser = NewTagParser(ctx.tagName, ctx.namingStrategy)
	return ctx
}

var defaultContext = New()

// Inspect describes t with the default context.
func Inspect(t reflect.Type) (*EntityMeta, error) {
	return defaultContext.Inspect(t)
}

// Naming returns the naming strategy of the context.
func (ctx *Context) Naming() NamingStrategy { return ctx.namingStrategy }

// Parser returns the tag parser of the context.
func (ctx *Context) Parser() *TagParser { return ctx.parser }

// Inspect builds the persistent field metadata of a struct type. Pointer
// types are dereferenced. Results are not cached; every call reflects anew.
func (ctx *Context) Inspect(t reflect.Type) (*EntityMeta, error) {
	if t == nil {
		return nil, fmt.Errorf("invalid model type: nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("invalid model type: %s (expected struct)", t.Kind())
	}

	numFields := t.NumField()
	meta := &EntityMeta{
		Type:       t,
		Name:       t.Name(),
		Fields:     make([]*FieldMeta, 0, numFields),
		byProperty: make(map[string]*FieldMeta, numFields),
	}

	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		meta.Table = tn.TableName()
	} else {
		meta.Table = ctx.namingStrategy.TableName(t.Name())
	}

	for i := 0; i < numFields; i++ {
		f := t.Field(i)

		// Anonymous Go embedding is not a persistence concept here; embedded
		// values are ordinary named fields tagged persist:"embedded".
		if f.Anonymous {
			continue
		}

		parsedTag, err := ctx.parser.ParseTag(f.Name, f.Tag)
		if err != nil {
			return nil, fmt.Errorf("error parsing tag for field %s: %w", f.Name, err)
		}
		if parsedTag.Skip {
			continue
		}

		fm := &FieldMeta{
			Name:     f.Name,
			Property: parsedTag.Property,
			Column:   parsedTag.Column,
			Type:     f.Type,
			Index:    f.Index,
			Tag:      parsedTag,
			Exported: f.IsExported(),
		}
		if prev, dup := meta.byProperty[fm.Property]; dup {
			return nil, fmt.Errorf("fields %s and %s share property %q", prev.Name, f.Name, fm.Property)
		}
		meta.Fields = append(meta.Fields, fm)
		meta.byProperty[fm.Property] = fm
	}

	return meta, nil
}
