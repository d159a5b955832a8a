/*
Package pgadapter provides an implementation of the
Adapter interface in the sqldataset package that works
over a PostgreSQL database.
*/
package pgadapter

import (
	"database/sql"
	"fmt"

	"github.com/pbanos/sapling/dataset/sqldataset"
	"github.com/pbanos/sapling/feature"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns
an Adapter that works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	return sqldataset.CheckColumnName(featureName)
}

func (a *adapter) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i+1)
}

func (a *adapter) ColumnType(k feature.Kind) string {
	if k == feature.Continuous {
		return "DOUBLE PRECISION"
	}
	return "INTEGER"
}

func (a *adapter) IDColumnDefinition() string {
	return `"id" SERIAL PRIMARY KEY`
}
