package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"ID":         "id",
		"UserID":     "user_id",
		"HTTPServer": "http_server",
		"ShipTo":     "ship_to",
		"Line2Total": "line2_total",
		"order_line": "order_line",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ToSnakeCase(in))
		})
	}
}

func TestToCamelAndPascalCase(t *testing.T) {
	assert.Equal(t, "userId", ToCamelCase("user_id"))
	assert.Equal(t, "UserId", ToPascalCase("user_id"))
	assert.Equal(t, "amountMinor", ToCamelCase("AmountMinor"))
	assert.Equal(t, "", ToCamelCase(""))
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		field, want string
	}{
		{"ShipTo", "shipTo"},
		{"ID", "id"},
		{"URLPath", "urlPath"},
		{"amount", "amount"},
		{"X", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, PropertyName(tt.field))
		})
	}
}

func TestDecapitalize(t *testing.T) {
	assert.Equal(t, "orderLine", Decapitalize("OrderLine"))
	assert.Equal(t, "uRL", Decapitalize("URL"))
	assert.Equal(t, "", Decapitalize(""))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "orders", Pluralize("order"))
	assert.Equal(t, "order_lines", Pluralize("order_line"))
	assert.Equal(t, "categories", Pluralize("category"))
	assert.Equal(t, "", Pluralize(""))
}

func TestParseColumnNaming(t *testing.T) {
	tests := []struct {
		in   string
		want ColumnNamingType
		ok   bool
	}{
		{"", ColumnSnakeCase, true},
		{"snake", ColumnSnakeCase, true},
		{"CamelCase", ColumnCamelCase, true},
		{"pascal", ColumnPascalCase, true},
		{"property", ColumnProperty, true},
		{"kebab", ColumnSnakeCase, false},
	}
	for _, tt := range tests {
		got, ok := ParseColumnNaming(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestDefaultNamingStrategy(t *testing.T) {
	ns := DefaultNamingStrategy()
	assert.Equal(t, "created_at", ns.ColumnName("CreatedAt"))
	assert.Equal(t, "order_lines", ns.TableName("OrderLine"))
}
