/*
Package sqlite3adapter provides a dbsource.Adapter over a SQLite3
database file.
*/
package sqlite3adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/dbsource"
	_ "github.com/mattn/go-sqlite3"
)

type adapter struct {
	db *sql.DB
}

/*
New takes the path to a SQLite3 database file and a limit to the
number of open connections (0 meaning no limit) and returns a
dbsource.Adapter over it or an error if the database cannot be
opened.
*/
func New(path string, maxConns int) (dbsource.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database at %s: %v", path, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return &adapter{db}, nil
}

func (a *adapter) QuerySamples(ctx context.Context, columns []string) (*sql.Rows, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	query := fmt.Sprintf("SELECT %s FROM samples ORDER BY rowid", strings.Join(quoted, ", "))
	return a.db.QueryContext(ctx, query)
}

func (a *adapter) Close() error {
	return a.db.Close()
}
