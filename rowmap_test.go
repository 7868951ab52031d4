package rowmap

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/rowmap/dialect"
	"github.com/Konsultn-Engineering/rowmap/errs"
	"github.com/Konsultn-Engineering/rowmap/meta"
	"github.com/Konsultn-Engineering/rowmap/projection"
	"github.com/Konsultn-Engineering/rowmap/relpath"
)

type Account struct {
	Owner   string
	Balance int64
}

func NewAccount(owner string, balance int64) Account {
	return Account{Owner: owner, Balance: balance}
}

type QAccount struct {
	*relpath.Base
}

var account = &QAccount{Base: relpath.New("accounts", "", "owner", "balance")}

type Unmapped struct{ Name string }

func init() {
	relpath.Default.Register(reflect.TypeFor[QAccount](), relpath.Static{Name: "account", Value: account})
	MustRegister[Account](meta.Func(NewAccount, meta.Params("owner", "balance")))
}

func TestPathOf(t *testing.T) {
	p, err := PathOf[Account]()
	require.NoError(t, err)
	assert.Same(t, account, p)

	_, err = PathOf[Unmapped]()
	assert.ErrorIs(t, err, errs.ErrMissingGeneratedPathType)
}

func TestPathFor(t *testing.T) {
	p, err := PathFor[relpath.Of[Account]]()
	require.NoError(t, err)
	assert.Same(t, account, p)
}

func TestProject(t *testing.T) {
	expr, err := Project[Account](account)
	require.NoError(t, err)

	again, err := Project[*Account](account)
	require.NoError(t, err)
	assert.Same(t, expr.Expression, again.Expression)

	got, err := expr.New(projection.MapRow{"owner": "ada", "balance": int32(1200)})
	require.NoError(t, err)
	assert.Equal(t, Account{Owner: "ada", Balance: 1200}, got)
}

func TestSelectSQL(t *testing.T) {
	sql, err := SelectSQL[Account](dialect.NewPostgresDialect(), account)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "accounts"."owner", "accounts"."balance" FROM "accounts"`, sql)

	sql, err = SelectSQL[Account](dialect.NewMySQLDialect(), account)
	require.NoError(t, err)
	assert.Equal(t, "SELECT `accounts`.`owner`, `accounts`.`balance` FROM `accounts`", sql)
}

func TestRegisterRejectsNonStruct(t *testing.T) {
	assert.Error(t, Register[int]())
}
