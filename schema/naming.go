package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"

	pluralizer "github.com/gertd/go-pluralize"
)

// pluralizeClient is a singleton instance for consistent pluralization behavior.
var pluralizeClient = pluralizer.NewClient()

// =========================================================================
// Core Interfaces
// =========================================================================

// NamingStrategy combines column and table naming.
type NamingStrategy interface {
	ColumnNamingStrategy
	TableNamingStrategy
}

// ColumnNamingStrategy defines how Go field names are converted to database column names.
type ColumnNamingStrategy interface {
	ColumnName(fieldName string) string
}

// TableNamingStrategy defines how Go struct names are converted to database table names.
type TableNamingStrategy interface {
	TableName(structName string) string
}

// =========================================================================
// Column Naming Strategies
// =========================================================================

// ColumnNamingType represents different column naming conventions.
type ColumnNamingType int

const (
	ColumnSnakeCase  ColumnNamingType = iota // user_id, first_name, created_at
	ColumnCamelCase                          // userId, firstName, createdAt
	ColumnPascalCase                         // UserId, FirstName, CreatedAt
	ColumnProperty                           // userID, firstName, createdAt (property name)
)

// ParseColumnNaming maps a configuration value to a ColumnNamingType.
func ParseColumnNaming(s string) (ColumnNamingType, bool) {
	switch strings.ToLower(s) {
	case "snake", "snake_case", "":
		return ColumnSnakeCase, true
	case "camel", "camelcase":
		return ColumnCamelCase, true
	case "pascal", "pascalcase":
		return ColumnPascalCase, true
	case "property":
		return ColumnProperty, true
	}
	return ColumnSnakeCase, false
}

type columnNamingStrategy struct {
	namingType ColumnNamingType
}

// NewColumnNamingStrategy creates a new column naming strategy.
func NewColumnNamingStrategy(namingType ColumnNamingType) ColumnNamingStrategy {
	return &columnNamingStrategy{namingType: namingType}
}

func (c *columnNamingStrategy) ColumnName(fieldName string) string {
	switch c.namingType {
	case ColumnCamelCase:
		return ToCamelCase(fieldName)
	case ColumnPascalCase:
		return ToPascalCase(fieldName)
	case ColumnProperty:
		return PropertyName(fieldName)
	default:
		return ToSnakeCase(fieldName)
	}
}

// =========================================================================
// Table Naming Strategies
// =========================================================================

type tableNamingStrategy struct {
	column ColumnNamingStrategy
	plural bool
}

// NewTableNamingStrategy derives table names with the given column strategy,
// optionally pluralizing the last word.
func NewTableNamingStrategy(column ColumnNamingStrategy, plural bool) TableNamingStrategy {
	return &tableNamingStrategy{column: column, plural: plural}
}

func (t *tableNamingStrategy) TableName(structName string) string {
	name := t.column.ColumnName(structName)
	if t.plural {
		return Pluralize(name)
	}
	return name
}

type combinedNamingStrategy struct {
	ColumnNamingStrategy
	TableNamingStrategy
}

// NewNamingStrategy combines column and table strategies.
func NewNamingStrategy(column ColumnNamingStrategy, table TableNamingStrategy) NamingStrategy {
	return &combinedNamingStrategy{ColumnNamingStrategy: column, TableNamingStrategy: table}
}

// DefaultNamingStrategy returns snake_case columns with plural snake_case tables.
func DefaultNamingStrategy() NamingStrategy {
	column := NewColumnNamingStrategy(ColumnSnakeCase)
	return NewNamingStrategy(column, NewTableNamingStrategy(column, true))
}

// PropertyNamingStrategy names columns after properties (shipTo, amountMinor)
// and tables in plural snake_case.
func PropertyNamingStrategy() NamingStrategy {
	return NewNamingStrategy(
		NewColumnNamingStrategy(ColumnProperty),
		NewTableNamingStrategy(NewColumnNamingStrategy(ColumnSnakeCase), true),
	)
}

// =========================================================================
// Core Conversion Functions
// =========================================================================

// ToSnakeCase converts any naming convention to snake_case, keeping acronyms
// together: UserID -> user_id, HTTPServer -> http_server.
func ToSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	var result strings.Builder
	result.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// ToCamelCase converts any naming convention to camelCase: user_id -> userId.
func ToCamelCase(name string) string {
	pascal := ToPascalCase(name)
	if pascal == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(pascal)
	return string(unicode.ToLower(r)) + pascal[size:]
}

// ToPascalCase converts any naming convention to PascalCase: user_id -> UserId.
func ToPascalCase(name string) string {
	var result strings.Builder
	result.Grow(len(name))
	for _, part := range strings.Split(ToSnakeCase(name), "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		result.WriteRune(unicode.ToUpper(r))
		result.WriteString(part[size:])
	}
	return result.String()
}

// PropertyName derives the property name of a Go field. A leading run of
// capitals is lowered as one word: ShipTo -> shipTo, ID -> id,
// URLPath -> urlPath.
func PropertyName(fieldName string) string {
	runes := []rune(fieldName)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return fieldName
	case n > 1 && n < len(runes) && unicode.IsLower(runes[n]):
		// The last capital starts the next word.
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// Decapitalize lowers the first rune only: OrderLine -> orderLine.
func Decapitalize(name string) string {
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// =========================================================================
// Pluralization
// =========================================================================

// Pluralize pluralizes the last word of a snake_case, camelCase or single-word name.
func Pluralize(name string) string {
	if name == "" {
		return ""
	}

	// Pluralize only the trailing word so order_line becomes order_lines.
	cut := strings.LastIndexByte(name, '_') + 1
	if cut == 0 {
		runes := []rune(name)
		for i := len(runes) - 1; i > 0; i-- {
			if unicode.IsUpper(runes[i]) {
				cut = len(string(runes[:i]))
				break
			}
		}
	}
	head, word := name[:cut], name[cut:]
	return head + preserveCase(word, pluralizeClient.Plural(strings.ToLower(word)))
}

// =========================================================================
// Utility Functions
// =========================================================================

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// preserveCase applies the case pattern of original to result.
func preserveCase(original, result string) string {
	if original == "" || result == "" {
		return result
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(result)
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(result)
	}
	r, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(r) {
		first, size := utf8.DecodeRuneInString(result)
		return string(unicode.ToUpper(first)) + strings.ToLower(result[size:])
	}
	return strings.ToLower(result)
}
