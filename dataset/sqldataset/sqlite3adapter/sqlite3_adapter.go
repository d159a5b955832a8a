/*
Package sqlite3adapter provides an implementation of the
Adapter interface in the sqldataset package that works
over an SQLite3 database file.
*/
package sqlite3adapter

import (
	"database/sql"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbanos/sapling/dataset/sqldataset"
	"github.com/pbanos/sapling/feature"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and the maximum number of
connections to keep open on it, and returns an Adapter that works on the
file's database or an error if it fails to open as an sqlite3 database.
A maxConns of 0 or less leaves the number of connections unlimited.
*/
func New(path string, maxConns int) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	return sqldataset.CheckColumnName(featureName)
}

func (a *adapter) Placeholder(int) string {
	return "?"
}

func (a *adapter) ColumnType(k feature.Kind) string {
	if k == feature.Continuous {
		return "REAL"
	}
	return "INTEGER"
}

func (a *adapter) IDColumnDefinition() string {
	return `"id" INTEGER PRIMARY KEY AUTOINCREMENT`
}
