package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultTagName is the struct tag read for persistence directives.
const DefaultTagName = "persist"

// Annotation names carried by fields, parameters and constructors.
const (
	AnnotationEmbedded   = "embedded"
	AnnotationCollection = "collection"
	AnnotationCreator    = "creator"
)

// ParsedTag represents a parsed persist struct tag.
type ParsedTag struct {
	Column     string // Column name (explicit or derived from the field name)
	Property   string // Property name used to join constructor parameters (explicit or derived)
	Skip       bool   // Field is not persistent (persist:"-")
	Embedded   bool   // Field is an embedded value mapped from columns of the same row
	Collection bool   // Field is populated by a separate query, never from the current row
}

// TagParser parses persist struct tags. It keeps no cache: parsing is cheap
// compared with the reflection around it and parsers are shared freely.
type TagParser struct {
	tagName string
	naming  ColumnNamingStrategy
}

// NewTagParser creates a parser reading tagName and deriving default column
// names with naming.
//
//	parser := NewTagParser(DefaultTagName, NewColumnNamingStrategy(ColumnSnakeCase))
func NewTagParser(tagName string, naming ColumnNamingStrategy) *TagParser {
	if tagName == "" {
		tagName = DefaultTagName
	}
	if naming == nil {
		naming = NewColumnNamingStrategy(ColumnSnakeCase)
	}
	return &TagParser{tagName: tagName, naming: naming}
}

// ParseTag parses the persist tag of a field.
//
// Supported tag syntax:
//
//	`persist:"ship_to"`                   // Column name
//	`persist:"column:ship_to;embedded"`   // Explicit column with flags
//	`persist:"property:shipTo"`           // Explicit property name
//	`persist:"collection"`                // Externally populated collection
//	`persist:"-"`                         // Not persistent
func (p *TagParser) ParseTag(fieldName string, tag reflect.StructTag) (*ParsedTag, error) {
	parsed := &ParsedTag{
		Column:   p.naming.ColumnName(fieldName),
		Property: PropertyName(fieldName),
	}

	value, ok := tag.Lookup(p.tagName)
	if !ok || value == "" {
		return parsed, nil
	}
	if value == "-" {
		parsed.Skip = true
		return parsed, nil
	}

	// A bare word that is not a known flag is a column name.
	if !strings.ContainsAny(value, ";:") && !isFlag(value) {
		parsed.Column = value
		return parsed, nil
	}

	for _, option := range strings.Split(value, ";") {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if err := p.parseOption(parsed, option); err != nil {
			return nil, fmt.Errorf("field %s: %w", fieldName, err)
		}
	}

	if parsed.Embedded && parsed.Collection {
		return nil, fmt.Errorf("field %s: embedded and collection are mutually exclusive", fieldName)
	}
	return parsed, nil
}

func isFlag(option string) bool {
	switch option {
	case AnnotationEmbedded, AnnotationCollection:
		return true
	}
	return false
}

func (p *TagParser) parseOption(tag *ParsedTag, option string) error {
	if colonIdx := strings.IndexByte(option, ':'); colonIdx != -1 {
		key := strings.TrimSpace(option[:colonIdx])
		value := strings.TrimSpace(option[colonIdx+1:])
		if value == "" {
			return fmt.Errorf("empty value for %q", key)
		}
		switch key {
		case "column":
			tag.Column = value
		case "property":
			tag.Property = value
		default:
			// Ignore unknown key:value pairs for forward compatibility
		}
		return nil
	}

	switch option {
	case AnnotationEmbedded:
		tag.Embedded = true
	case AnnotationCollection:
		tag.Collection = true
	default:
		// Ignore unknown flags for forward compatibility
	}
	return nil
}

// Annotations returns the directives of the tag as annotation names.
func (tag *ParsedTag) Annotations() []string {
	var out []string
	if tag.Embedded {
		out = append(out, AnnotationEmbedded)
	}
	if tag.Collection {
		out = append(out, AnnotationCollection)
	}
	return out
}
