package sqldataset

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numberedAdapter struct{}

func (numberedAdapter) DB() *sql.DB { return nil }

func (numberedAdapter) ColumnName(name string) (string, error) { return CheckColumnName(name) }

func (numberedAdapter) Placeholder(i int) string { return fmt.Sprintf("$%d", i+1) }

func (numberedAdapter) ColumnType(k feature.Kind) string {
	if k == feature.Continuous {
		return "REAL"
	}
	return "INTEGER"
}

func (numberedAdapter) IDColumnDefinition() string { return `"id" SERIAL PRIMARY KEY` }

func testSchema(t *testing.T) *feature.Schema {
	s, err := feature.NewSchema(
		feature.NewContinuousFeature("x", 0, 10, 1),
		feature.NewLabelFeature("y", []int{0, 1}),
	)
	require.NoError(t, err)
	return s
}

func TestCreateTableStatement(t *testing.T) {
	s := testSchema(t)
	columns, err := columnNames(numberedAdapter{}, s)
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS entries("x" REAL NOT NULL, "y" INTEGER NOT NULL, "id" SERIAL PRIMARY KEY)`,
		createTableStatement(numberedAdapter{}, s, columns),
	)
}

func TestInsertStatement(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO entries ("x", "y") VALUES ($1, $2), ($3, $4)`,
		insertStatement(numberedAdapter{}, []string{"x", "y"}, 2),
	)
}

func TestSelectStatement(t *testing.T) {
	assert.Equal(t, `SELECT "x", "y" FROM entries ORDER BY "id"`, selectStatement([]string{"x", "y"}))
}

func TestCheckColumnName(t *testing.T) {
	c, err := CheckColumnName("petal width")
	require.NoError(t, err)
	assert.Equal(t, "petal width", c)
	_, err = CheckColumnName("id")
	assert.Error(t, err)
	_, err = CheckColumnName(`a"b`)
	assert.Error(t, err)
}

func TestArgument(t *testing.T) {
	assert.Equal(t, 2.5, argument(feature.ContinuousValue(2.5)))
	assert.Equal(t, int64(3), argument(feature.DiscreteValue(3)))
}
