/*
Package csv reads and writes dataset entries as comma (or whitespace)
separated values.
*/
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/feature/names"
)

/*
Options configures how entries are laid out.

With Header, the first row holds feature names, which may come in any order
but must include every feature of the schema. Without it, rows hold the
values in schema order.

Comma is the field separator. Whitespace overrides it, splitting fields on
any run of spaces or tabs.
*/
type Options struct {
	Header     bool
	Comma      rune
	Whitespace bool
}

// DefaultOptions are comma separated rows with a header
var DefaultOptions = Options{Header: true, Comma: ','}

// DataOptions lay out the data files of dataset directories:
// headerless rows of whitespace separated values
var DataOptions = Options{Whitespace: true}

/*
Writer writes entries to an underlying stream
*/
type Writer struct {
	count  int
	schema *feature.Schema
	w      *csv.Writer
	ws     *bufio.Writer
}

/*
ReadPartition takes an io.Reader for a CSV stream, a schema and the options
describing the layout of the stream and returns a partition with the entries
parsed from it or an error.
*/
func ReadPartition(reader io.Reader, schema *feature.Schema, opts Options) (*dataset.Partition, error) {
	var entries []*dataset.Entry
	err := ReadEntriesBy(reader, schema, opts, func(_ int, e *dataset.Entry) (bool, error) {
		entries = append(entries, e)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dataset.New(schema, entries), nil
}

/*
ReadEntriesBy takes an io.Reader for a CSV stream, a schema, layout options and
a lambda function on an integer and an entry that returns a boolean value.
It parses the entries from the reader and for each it calls the lambda
function with the entry and its index as parameters. If the lambda function
returns true, it will continue processing the next entry, otherwise it will
stop. An error is returned if something goes wrong when reading the stream or
parsing an entry, including values that are not valid for their feature.
*/
func ReadEntriesBy(reader io.Reader, schema *feature.Schema, opts Options, lambda func(int, *dataset.Entry) (bool, error)) error {
	next := rowReader(reader, opts)
	order := make([]int, schema.Len())
	for i := range order {
		order[i] = i
	}
	line := 1
	if opts.Header {
		header, err := next()
		if err != nil {
			return fmt.Errorf("reading header: %v", err)
		}
		order, err = parseHeader(header, schema)
		if err != nil {
			return err
		}
		line++
	}
	for i := 0; ; i, line = i+1, line+1 {
		row, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		if row == nil {
			i--
			continue
		}
		e, err := parseEntry(row, order, schema)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", line, err)
		}
		ok, err := lambda(i, e)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadPartitionFromFile takes a filepath string, a schema and layout options,
opens the file to which the filepath points to (os.Stdin if it is empty) and
uses ReadPartition to return the partition read from it or an error.
*/
func ReadPartitionFromFile(path string, schema *feature.Schema, opts Options) (*dataset.Partition, error) {
	f := os.Stdin
	if path != "" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading entries: %v", err)
		}
		defer f.Close()
	}
	p, err := ReadPartition(f, schema, opts)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", path, err)
	}
	return p, err
}

/*
ReadDirectory takes a directory and a dataset name and reads the dataset
stored under dir/name: its schema from the "names" file and its entries from
the "data" file, laid out as DataOptions.
*/
func ReadDirectory(dir, name string) (*feature.Schema, *dataset.Partition, error) {
	base := filepath.Join(dir, name)
	schema, err := names.ReadSchemaFromFile(filepath.Join(base, "names"))
	if err != nil {
		return nil, nil, err
	}
	p, err := ReadPartitionFromFile(filepath.Join(base, "data"), schema, DataOptions)
	if err != nil {
		return nil, nil, err
	}
	return schema, p, nil
}

/*
NewWriter takes an io.Writer, a schema and layout options and returns a
Writer that will write entries on the io.Writer, starting with the header
if the options require it.
*/
func NewWriter(writer io.Writer, schema *feature.Schema, opts Options) (*Writer, error) {
	cw := &Writer{schema: schema}
	if opts.Whitespace {
		cw.ws = bufio.NewWriter(writer)
	} else {
		cw.w = csv.NewWriter(writer)
		if opts.Comma != 0 {
			cw.w.Comma = opts.Comma
		}
	}
	if opts.Header {
		record := make([]string, schema.Len())
		for i, f := range schema.Features() {
			record[i] = f.Name()
		}
		if err := cw.writeRecord(record); err != nil {
			return nil, fmt.Errorf("writing CSV header: %v", err)
		}
	}
	return cw, nil
}

// Write writes the given entries and returns how many were written
func (cw *Writer) Write(ctx context.Context, entries []*dataset.Entry) (int, error) {
	for n, e := range entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		record := make([]string, cw.schema.Len())
		for i := range record {
			record[i] = e.Value(i).String()
		}
		if err := cw.writeRecord(record); err != nil {
			return n, fmt.Errorf("writing CSV row for entry %d: %v", cw.count+1, err)
		}
		cw.count++
	}
	return len(entries), nil
}

// Count returns the total number of entries written
func (cw *Writer) Count() int {
	return cw.count
}

// Flush ensures every written entry reaches the underlying io.Writer
func (cw *Writer) Flush() error {
	if cw.ws != nil {
		return cw.ws.Flush()
	}
	cw.w.Flush()
	return cw.w.Error()
}

func (cw *Writer) writeRecord(record []string) error {
	if cw.ws != nil {
		_, err := cw.ws.WriteString(strings.Join(record, " ") + "\n")
		return err
	}
	return cw.w.Write(record)
}

/*
WritePartition takes a context, an io.Writer, a partition and layout options
and dumps the partition entries to the writer. It returns an error if
something went wrong when writing to the writer.
*/
func WritePartition(ctx context.Context, writer io.Writer, p *dataset.Partition, opts Options) error {
	cw, err := NewWriter(writer, p.Schema(), opts)
	if err != nil {
		return err
	}
	if _, err = cw.Write(ctx, p.Entries()); err != nil {
		return err
	}
	return cw.Flush()
}

// rowReader returns a function returning the next row of the stream, nil for
// blank lines, and io.EOF at its end
func rowReader(reader io.Reader, opts Options) func() ([]string, error) {
	if opts.Whitespace {
		scanner := bufio.NewScanner(reader)
		return func() ([]string, error) {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				return nil, nil
			}
			return fields, nil
		}
	}
	r := csv.NewReader(reader)
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}
	r.TrimLeadingSpace = true
	return r.Read
}

func parseHeader(header []string, schema *feature.Schema) ([]int, error) {
	order := make([]int, 0, len(header))
	seen := make(map[int]bool, len(header))
	for _, name := range header {
		i, ok := schema.Index(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("parsing header: reference to unknown feature %s", name)
		}
		if seen[i] {
			return nil, fmt.Errorf("parsing header: feature %s appears twice", name)
		}
		seen[i] = true
		order = append(order, i)
	}
	if len(order) != schema.Len() {
		return nil, fmt.Errorf("parsing header: %d of %d features present", len(order), schema.Len())
	}
	return order, nil
}

func parseEntry(row []string, order []int, schema *feature.Schema) (*dataset.Entry, error) {
	if len(row) != len(order) {
		return nil, fmt.Errorf("expected %d values, got %d", len(order), len(row))
	}
	values := make([]feature.Value, schema.Len())
	for col, fi := range order {
		v, err := feature.ParseValue(schema.Feature(fi), row[col])
		if err != nil {
			return nil, err
		}
		values[fi] = v
	}
	return dataset.NewEntry(values...), nil
}
