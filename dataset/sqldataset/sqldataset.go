/*
Package sqldataset loads and stores partitions on SQL databases.

Entries are stored on a single table named entries, with a column per
feature named after it plus an autoincremented id column that keeps the
order in which the entries were written. Discrete values are stored as
integer codes and continuous ones as floating point numbers.

Database specifics are left to an Adapter, with implementations for SQLite3
and PostgreSQL in the subpackages.
*/
package sqldataset

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

const (
	// TableName is the name of the table holding the entries
	TableName = "entries"

	/*
		MaxEntryInsertionsPerStatement is the maximum number
		of entries that are added with a single insert command.
		Writing more will result in making more insertion commands
	*/
	MaxEntryInsertionsPerStatement = 10
)

/*
Adapter is an interface providing the database specific
pieces needed to load and store entries.
*/
type Adapter interface {
	// DB returns the database connection pool to work on
	DB() *sql.DB
	// ColumnName returns the column name for a feature, or an error if the
	// feature name cannot be used as column name
	ColumnName(featureName string) (string, error)
	// Placeholder returns the placeholder for the i-th (0-based) argument of
	// a statement
	Placeholder(i int) string
	// ColumnType returns the column type to store values of the given kind
	ColumnType(feature.Kind) string
	// IDColumnDefinition returns the definition of the autoincremented id column
	IDColumnDefinition() string
}

/*
Load takes a context, an adapter and a schema and returns a partition with
the entries stored in the database, in the order they were written, or an
error if they cannot be read or are not valid for the schema.
*/
func Load(ctx context.Context, a Adapter, schema *feature.Schema) (*dataset.Partition, error) {
	columns, err := columnNames(a, schema)
	if err != nil {
		return nil, err
	}
	rows, err := a.DB().QueryContext(ctx, selectStatement(columns))
	if err != nil {
		return nil, fmt.Errorf("querying entries: %v", err)
	}
	defer rows.Close()
	var entries []*dataset.Entry
	for rows.Next() {
		e, err := scanEntry(rows, schema)
		if err != nil {
			return nil, fmt.Errorf("reading entry %d: %v", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterating on entries: %v", err)
	}
	p := dataset.New(schema, entries)
	err = p.Validate()
	if err != nil {
		return nil, err
	}
	return p, nil
}

/*
Write takes a context, an adapter and a partition and stores the partition
entries on the database, creating the entries table if it does not exist.
Entries are inserted in a single transaction, so either all of them are
stored or none is. It returns the number of entries written or an error.
*/
func Write(ctx context.Context, a Adapter, p *dataset.Partition) (int, error) {
	schema := p.Schema()
	columns, err := columnNames(a, schema)
	if err != nil {
		return 0, err
	}
	_, err = a.DB().ExecContext(ctx, createTableStatement(a, schema, columns))
	if err != nil {
		return 0, fmt.Errorf("ensuring %s table exists: %v", TableName, err)
	}
	tx, err := a.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %v", err)
	}
	n, err := insertEntries(ctx, tx, a, columns, p.Entries())
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("committing %d entries: %v", n, err)
	}
	return n, nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, a Adapter, columns []string, entries []*dataset.Entry) (int, error) {
	var stmt *sql.Stmt
	defer func() {
		if stmt != nil {
			stmt.Close()
		}
	}()
	prepared := 0
	for start := 0; start < len(entries); start += MaxEntryInsertionsPerStatement {
		end := start + MaxEntryInsertionsPerStatement
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[start:end]
		if len(chunk) != prepared {
			if stmt != nil {
				stmt.Close()
			}
			var err error
			stmt, err = tx.PrepareContext(ctx, insertStatement(a, columns, len(chunk)))
			if err != nil {
				return start, fmt.Errorf("preparing insert command for %d entries: %v", len(chunk), err)
			}
			prepared = len(chunk)
		}
		args := make([]interface{}, 0, len(chunk)*len(columns))
		for _, e := range chunk {
			for i := range columns {
				args = append(args, argument(e.Value(i)))
			}
		}
		_, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return start, fmt.Errorf("inserting entries %d to %d: %v", start+1, end, err)
		}
	}
	return len(entries), nil
}

func columnNames(a Adapter, schema *feature.Schema) ([]string, error) {
	columns := make([]string, 0, schema.Len())
	for _, f := range schema.Features() {
		c, err := a.ColumnName(f.Name())
		if err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, nil
}

func createTableStatement(a Adapter, schema *feature.Schema, columns []string) string {
	var buf bytes.Buffer
	buf.WriteString("CREATE TABLE IF NOT EXISTS ")
	buf.WriteString(TableName)
	buf.WriteString("(")
	for i, c := range columns {
		buf.WriteString(fmt.Sprintf(`"%s" %s NOT NULL, `, c, a.ColumnType(schema.Feature(i).Kind())))
	}
	buf.WriteString(a.IDColumnDefinition())
	buf.WriteString(")")
	return buf.String()
}

func insertStatement(a Adapter, columns []string, rows int) string {
	var buf bytes.Buffer
	buf.WriteString("INSERT INTO ")
	buf.WriteString(TableName)
	buf.WriteString(` ("`)
	buf.WriteString(strings.Join(columns, `", "`))
	buf.WriteString(`") VALUES `)
	arg := 0
	for r := 0; r < rows; r++ {
		if r > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for c := range columns {
			if c > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(a.Placeholder(arg))
			arg++
		}
		buf.WriteString(")")
	}
	return buf.String()
}

func selectStatement(columns []string) string {
	return fmt.Sprintf(`SELECT "%s" FROM %s ORDER BY "id"`, strings.Join(columns, `", "`), TableName)
}

func argument(v feature.Value) interface{} {
	if v.Kind() == feature.Continuous {
		return v.Number()
	}
	return int64(v.Code())
}

func scanEntry(rows *sql.Rows, schema *feature.Schema) (*dataset.Entry, error) {
	codes := make([]int64, schema.Len())
	numbers := make([]float64, schema.Len())
	dest := make([]interface{}, schema.Len())
	for i, f := range schema.Features() {
		if f.Kind() == feature.Continuous {
			dest[i] = &numbers[i]
		} else {
			dest[i] = &codes[i]
		}
	}
	err := rows.Scan(dest...)
	if err != nil {
		return nil, err
	}
	values := make([]feature.Value, schema.Len())
	for i, f := range schema.Features() {
		if f.Kind() == feature.Continuous {
			values[i] = feature.ContinuousValue(numbers[i])
		} else {
			values[i] = feature.DiscreteValue(int(codes[i]))
		}
	}
	return dataset.NewEntry(values...), nil
}

/*
CheckColumnName returns the feature name as column name, or an error if it
is the reserved id or contains double quotes. Adapters may use it to
implement ColumnName.
*/
func CheckColumnName(featureName string) (string, error) {
	if featureName == "id" {
		return "", fmt.Errorf(`'%s' is reserved and cannot be used as feature name`, featureName)
	}
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return featureName, nil
}
