package errack

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
)

// DB is a persistence unit. *pgxpool.Pool satisfies it; each Begin acquires a
// connection that is released again on Commit or Rollback.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Units maps persistence unit names, as passed in the EmfName parameter, to databases.
type Units map[string]DB

// Names returns the registered unit names in sorted order.
func (u Units) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
