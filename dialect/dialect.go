// Package dialect holds the identifier rules of the supported databases.
package dialect

import "fmt"

type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
}

// ByName returns the dialect called name: postgres, mysql or tidb.
func ByName(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}
