package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// Test Data Structures
// =========================================================================

type Address struct {
	Street string
	City   string
}

type Item struct {
	SKU string
}

type Order struct {
	ID        uint64
	ShipTo    Address `persist:"embedded"`
	Items     []Item  `persist:"collection"`
	Note      string  `persist:"-"`
	CreatedAt time.Time
	URLPath   string `persist:"column:url;property:link"`
	secret    string
}

type Person struct {
	Name string
}

func (Person) TableName() string { return "humans" }

type Clash struct {
	A string `persist:"property:x"`
	B string `persist:"property:x"`
}

type BadTag struct {
	Both []Item `persist:"embedded;collection"`
}

// =========================================================================
// Inspection Tests
// =========================================================================

func TestInspect(t *testing.T) {
	tests := []struct {
		name          string
		inputType     reflect.Type
		expectError   bool
		expectedNames []string
		expectedTable string
	}{
		{
			name:          "Struct",
			inputType:     reflect.TypeOf(Order{}),
			expectedNames: []string{"ID", "ShipTo", "Items", "CreatedAt", "URLPath", "secret"},
			expectedTable: "orders",
		},
		{
			name:          "Pointer",
			inputType:     reflect.TypeOf(&Order{}),
			expectedNames: []string{"ID", "ShipTo", "Items", "CreatedAt", "URLPath", "secret"},
			expectedTable: "orders",
		},
		{
			name:          "TableNamer",
			inputType:     reflect.TypeOf(Person{}),
			expectedNames: []string{"Name"},
			expectedTable: "humans",
		},
		{name: "String", inputType: reflect.TypeOf(""), expectError: true},
		{name: "Nil", inputType: nil, expectError: true},
		{name: "PropertyClash", inputType: reflect.TypeOf(Clash{}), expectError: true},
		{name: "ConflictingFlags", inputType: reflect.TypeOf(BadTag{}), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Inspect(tt.inputType)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, meta)
				return
			}

			require.NoError(t, err)
			names := make([]string, 0, len(meta.Fields))
			for _, f := range meta.Fields {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			assert.Equal(t, tt.expectedTable, meta.Table)
		})
	}
}

func TestInspectFieldMetadata(t *testing.T) {
	meta, err := Inspect(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	shipTo, ok := meta.Field("shipTo")
	require.True(t, ok)
	assert.True(t, shipTo.Tag.Embedded)
	assert.Equal(t, "ship_to", shipTo.Column)
	assert.Equal(t, reflect.TypeOf(Address{}), shipTo.Type)

	items, ok := meta.Field("items")
	require.True(t, ok)
	assert.True(t, items.Tag.Collection)
	assert.Equal(t, []string{AnnotationCollection}, items.Tag.Annotations())

	id, ok := meta.Field("id")
	require.True(t, ok)
	assert.Equal(t, "id", id.Column)
	assert.True(t, id.Exported)

	link, ok := meta.Field("link")
	require.True(t, ok)
	assert.Equal(t, "url", link.Column)

	secret, ok := meta.Field("secret")
	require.True(t, ok)
	assert.False(t, secret.Exported)

	_, ok = meta.Field("note")
	assert.False(t, ok, "skipped fields are not persistent")
}

func TestInspectWithPropertyNaming(t *testing.T) {
	ctx := New(WithNamingStrategy(PropertyNamingStrategy()))

	meta, err := ctx.Inspect(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	createdAt, ok := meta.Field("createdAt")
	require.True(t, ok)
	assert.Equal(t, "createdAt", createdAt.Column)
	assert.Equal(t, "orders", meta.Table)
}

func TestInspectCustomTagName(t *testing.T) {
	type Row struct {
		Value string `db:"val"`
	}

	meta, err := New(WithTagName("db")).Inspect(reflect.TypeOf(Row{}))
	require.NoError(t, err)
	assert.Equal(t, "val", meta.Fields[0].Column)
}

// =========================================================================
// Tag Parser Tests
// =========================================================================

func TestParseTag(t *testing.T) {
	parser := NewTagParser(DefaultTagName, NewColumnNamingStrategy(ColumnSnakeCase))

	tests := []struct {
		name     string
		field    string
		tag      reflect.StructTag
		expected *ParsedTag
		wantErr  bool
	}{
		{
			name:     "NoTag",
			field:    "AmountMinor",
			expected: &ParsedTag{Column: "amount_minor", Property: "amountMinor"},
		},
		{
			name:     "BareColumn",
			field:    "AmountMinor",
			tag:      `persist:"minor_units"`,
			expected: &ParsedTag{Column: "minor_units", Property: "amountMinor"},
		},
		{
			name:     "BareFlag",
			field:    "ShipTo",
			tag:      `persist:"embedded"`,
			expected: &ParsedTag{Column: "ship_to", Property: "shipTo", Embedded: true},
		},
		{
			name:     "Options",
			field:    "Lines",
			tag:      `persist:"column:order_lines; collection ;unknown;other:x"`,
			expected: &ParsedTag{Column: "order_lines", Property: "lines", Collection: true},
		},
		{
			name:     "Skip",
			field:    "Cache",
			tag:      `persist:"-"`,
			expected: &ParsedTag{Column: "cache", Property: "cache", Skip: true},
		},
		{
			name:    "EmptyValue",
			field:   "X",
			tag:     `persist:"column:"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseTag(tt.field, tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewSetter(t *testing.T) {
	meta, err := Inspect(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	id, _ := meta.Field("id")
	shipTo, _ := meta.Field("shipTo")

	var o Order
	ptr := reflect.ValueOf(&o).UnsafePointer()
	NewSetter(meta.Type, id)(ptr, reflect.ValueOf(uint64(9)))
	NewSetter(meta.Type, shipTo)(ptr, reflect.ValueOf(Address{City: "Zagreb"}))

	assert.Equal(t, uint64(9), o.ID)
	assert.Equal(t, "Zagreb", o.ShipTo.City)

	NewSetter(meta.Type, id)(ptr, reflect.Value{})
	assert.Zero(t, o.ID)
}
