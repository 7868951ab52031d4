package ctor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/rowmap/errs"
	"github.com/Konsultn-Engineering/rowmap/meta"
	"github.com/Konsultn-Engineering/rowmap/schema"
)

// =========================================================================
// Test Data Structures
// =========================================================================

type Money struct {
	AmountMinor int64
	Currency    string
}

func NewMoney(amountMinor int64, currency string) Money {
	return Money{AmountMinor: amountMinor, Currency: currency}
}

func ZeroMoney() Money { return Money{} }

var (
	stringType = reflect.TypeFor[string]()
	intType    = reflect.TypeFor[int64]()
	moneyType  = reflect.TypeFor[Money]()
)

// fakeIntrospector serves constructor metadata from maps.
type fakeIntrospector struct {
	ctors     map[reflect.Type][]*meta.Constructor
	canonical map[reflect.Type]bool
	backing   map[reflect.Type]*meta.Constructor // present key: has primary
	names     map[*meta.Constructor][]string
	err       error
}

func (f *fakeIntrospector) Constructors(t reflect.Type) ([]*meta.Constructor, error) {
	return f.ctors[t], f.err
}

func (f *fakeIntrospector) Fields(reflect.Type) ([]*meta.Field, error) { return nil, nil }

func (f *fakeIntrospector) Canonical(t reflect.Type) bool { return f.canonical[t] }

func (f *fakeIntrospector) Primary(t reflect.Type) (meta.Primary, bool) {
	_, ok := f.backing[t]
	return meta.Primary{Type: t}, ok
}

func (f *fakeIntrospector) Backing(p meta.Primary) (*meta.Constructor, bool) {
	c := f.backing[p.Type]
	return c, c != nil
}

func (f *fakeIntrospector) ParameterNames(c *meta.Constructor) []string { return f.names[c] }

func candidate(name string, in ...reflect.Type) *meta.Constructor {
	return &meta.Constructor{Name: name, Owner: moneyType, In: in, ParamAnnotations: make([]meta.Annotations, len(in))}
}

func creator(c *meta.Constructor) *meta.Constructor {
	c.Annotations = meta.Annotations{schema.AnnotationCreator}
	return c
}

func synthetic(c *meta.Constructor) *meta.Constructor {
	c.Synthetic = true
	return c
}

// =========================================================================
// Discovery Tests
// =========================================================================

func TestDiscover(t *testing.T) {
	zero := candidate("zero")
	one := candidate("one", stringType)
	two := candidate("two", intType, stringType)
	twoAgain := candidate("twoAgain", stringType, intType)
	three := candidate("three", intType, stringType, stringType)
	primary := candidate("primary", intType, stringType)

	tests := []struct {
		name       string
		ctors      []*meta.Constructor
		canonical  bool
		backing    *meta.Constructor
		hasPrimary bool
		want       string
		wantErr    bool
	}{
		{name: "SingleConstructor", ctors: []*meta.Constructor{one}, want: "one"},
		{name: "GreatestArity", ctors: []*meta.Constructor{zero, two, one}, want: "two"},
		{name: "TieGoesToFirstDeclared", ctors: []*meta.Constructor{two, twoAgain}, want: "two"},
		{name: "TieGoesToFirstDeclaredReversed", ctors: []*meta.Constructor{twoAgain, two}, want: "twoAgain"},
		{name: "CreatorBeatsArity", ctors: []*meta.Constructor{three, creator(candidate("made", stringType))}, want: "made"},
		{
			name:  "FirstCreatorWins",
			ctors: []*meta.Constructor{creator(candidate("first")), creator(candidate("second", stringType))},
			want:  "first",
		},
		{name: "SyntheticSkipped", ctors: []*meta.Constructor{synthetic(candidate("gen", intType, intType, intType)), one}, want: "one"},
		{
			name:  "SyntheticCreatorSkipped",
			ctors: []*meta.Constructor{synthetic(creator(candidate("gen"))), two},
			want:  "two",
		},
		{
			name:       "CanonicalBeatsLongerSecondary",
			ctors:      []*meta.Constructor{three, primary},
			canonical:  true,
			hasPrimary: true,
			backing:    primary,
			want:       "primary",
		},
		{
			name:       "CreatorBeatsCanonical",
			ctors:      []*meta.Constructor{primary, creator(candidate("made", stringType))},
			canonical:  true,
			hasPrimary: true,
			backing:    primary,
			want:       "made",
		},
		{
			name:       "CanonicalWithoutBacking",
			ctors:      []*meta.Constructor{three},
			canonical:  true,
			hasPrimary: true,
			wantErr:    true,
		},
		{
			name:      "CanonicalWithoutPrimary",
			ctors:     []*meta.Constructor{one, three},
			canonical: true,
			want:      "three",
		},
		{name: "NoConstructors", wantErr: true},
		{name: "OnlySynthetic", ctors: []*meta.Constructor{synthetic(candidate("gen"))}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &fakeIntrospector{
				ctors:     map[reflect.Type][]*meta.Constructor{moneyType: tt.ctors},
				canonical: map[reflect.Type]bool{moneyType: tt.canonical},
				backing:   map[reflect.Type]*meta.Constructor{},
			}
			if tt.hasPrimary {
				in.backing[moneyType] = tt.backing
			}

			got, err := Discover(moneyType, in, meta.DefaultPredicates())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errs.ErrNoUsableConstructor))
				ce, ok := errs.As(err)
				require.True(t, ok)
				assert.Equal(t, moneyType, ce.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Constructor.Name)
			assert.Equal(t, moneyType, got.Type)
		})
	}
}

func TestDiscoverParameters(t *testing.T) {
	c := candidate("ctor", intType, stringType, stringType)
	c.ParamAnnotations[1] = meta.Annotations{schema.AnnotationEmbedded}

	in := &fakeIntrospector{
		ctors: map[reflect.Type][]*meta.Constructor{moneyType: {c}},
		names: map[*meta.Constructor][]string{c: {"amountMinor", ""}},
	}

	got, err := Discover(moneyType, in, meta.DefaultPredicates())
	require.NoError(t, err)
	require.Len(t, got.Params, 3)

	assert.Equal(t, Parameter{Name: "amountMinor", Type: intType}, got.Params[0])
	assert.Equal(t, Parameter{Type: stringType, Annotations: meta.Annotations{schema.AnnotationEmbedded}}, got.Params[1])
	assert.False(t, got.Params[1].Named())
	assert.False(t, got.Params[2].Named(), "names missing past the end are absent")
}

func TestDiscoverRejectsNonStructs(t *testing.T) {
	in := &fakeIntrospector{}
	for _, typ := range []reflect.Type{nil, stringType, reflect.TypeFor[map[string]int](), reflect.TypeFor[*Money](), reflect.TypeFor[error]()} {
		_, err := Discover(typ, in, meta.DefaultPredicates())
		assert.ErrorIs(t, err, errs.ErrNoUsableConstructor, "%v", typ)
	}
}

func TestDiscoverIntrospectionFailure(t *testing.T) {
	cause := errors.New("boom")
	in := &fakeIntrospector{err: cause}

	_, err := Discover(moneyType, in, meta.DefaultPredicates())
	assert.ErrorIs(t, err, errs.ErrNoUsableConstructor)
	assert.ErrorIs(t, err, cause)
}

func TestDiscoverWithoutCreatorPredicate(t *testing.T) {
	in := &fakeIntrospector{
		ctors: map[reflect.Type][]*meta.Constructor{
			moneyType: {creator(candidate("made")), candidate("two", intType, stringType)},
		},
	}

	got, err := Discover(moneyType, in, meta.Predicates{})
	require.NoError(t, err)
	assert.Equal(t, "two", got.Constructor.Name)
}

func TestDiscoverOnlySynthetic(t *testing.T) {
	in := &fakeIntrospector{
		ctors: map[reflect.Type][]*meta.Constructor{
			moneyType: {synthetic(candidate("closure", intType))},
		},
	}

	_, err := Discover(moneyType, in, meta.DefaultPredicates())
	require.ErrorIs(t, err, errs.ErrNoUsableConstructor)
	ce, ok := errs.As(err)
	require.True(t, ok)
	assert.Contains(t, ce.Detail, "synthetic")
}

func TestDiscoverInlineClosure(t *testing.T) {
	type Tag struct{ Name string }
	cat := meta.NewCatalog()
	meta.MustRegister[Tag](cat, meta.Func(func(name string) Tag { return Tag{Name: name} }))

	_, err := Discover(reflect.TypeFor[Tag](), cat, meta.DefaultPredicates())
	assert.ErrorIs(t, err, errs.ErrNoUsableConstructor)
	assert.ErrorContains(t, err, "all registered constructors are synthetic")
}

func TestShape(t *testing.T) {
	in := &fakeIntrospector{canonical: map[reflect.Type]bool{moneyType: true}}

	assert.Equal(t, CanonicalShape, ShapeOf(moneyType, in))
	assert.Equal(t, PlainShape, ShapeOf(stringType, in))
	assert.Equal(t, "canonical", CanonicalShape.String())
	assert.Equal(t, "plain", PlainShape.String())
	assert.Equal(t, "Shape(7)", Shape(7).String())
}

// =========================================================================
// Catalog-backed Scenarios
// =========================================================================

func TestDiscoverMoney(t *testing.T) {
	cat := meta.NewCatalog()
	meta.MustRegister[Money](cat, meta.Func(NewMoney), meta.Func(ZeroMoney))

	got, err := Discover(moneyType, cat, meta.DefaultPredicates())
	require.NoError(t, err)

	assert.Equal(t, []Parameter{
		{Name: "amountMinor", Type: intType},
		{Name: "currency", Type: stringType},
	}, got.Params)

	v, err := got.New([]reflect.Value{reflect.ValueOf(int64(1999)), reflect.ValueOf("EUR")})
	require.NoError(t, err)
	assert.Equal(t, Money{AmountMinor: 1999, Currency: "EUR"}, v.Interface())
}

func TestDiscoverCanonicalLiteral(t *testing.T) {
	cat := meta.NewCatalog()
	meta.MustRegister[Money](cat, meta.Canonical(), meta.Func(ZeroMoney))

	first, err := Discover(moneyType, cat, meta.DefaultPredicates())
	require.NoError(t, err)
	assert.True(t, first.Constructor.Literal())
	assert.Equal(t, "amountMinor", first.Params[0].Name)

	second, err := Discover(moneyType, cat, meta.DefaultPredicates())
	require.NoError(t, err)
	assert.NotSame(t, first, second, "results are not cached")
	assert.Equal(t, first.Params, second.Params)
}
