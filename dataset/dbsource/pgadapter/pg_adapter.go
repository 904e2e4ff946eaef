/*
Package pgadapter provides a dbsource.Adapter over a PostgreSQL
database.
*/
package pgadapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/dbsource"
	_ "github.com/lib/pq"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL connection URL and returns a dbsource.Adapter
over the database it points to or an error if the connection cannot
be opened.
*/
func New(url string) (dbsource.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening postgresql database at %s: %v", url, err)
	}
	return &adapter{db}, nil
}

func (a *adapter) QuerySamples(ctx context.Context, columns []string) (*sql.Rows, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	query := fmt.Sprintf("SELECT %s FROM samples ORDER BY id", strings.Join(quoted, ", "))
	return a.db.QueryContext(ctx, query)
}

func (a *adapter) Close() error {
	return a.db.Close()
}
