/*
Package names parses feature schemas from "names" files, a plain text format
declaring one feature per line:

	name c [lower upper [precision]]
	name d [y|n] count value1 ... valueN

where c and d stand for continuous and discrete, y flags the label feature and
count is the number of values that follow. Blank lines and lines starting
with # are ignored.
*/
package names

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pbanos/sapling/feature"
)

/*
ReadDeclarations takes an io.Reader with a names file and returns the
declarations parsed from it, or an error indicating the offending line.
*/
func ReadDeclarations(r io.Reader) ([]feature.Declaration, error) {
	var decls []feature.Declaration
	scanner := bufio.NewScanner(r)
	for l := 1; scanner.Scan(); l++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := parseLine(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %v", l, err)
		}
		decls = append(decls, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading names: %v", err)
	}
	return decls, nil
}

// ReadSchema parses the names file in r into a validated schema
func ReadSchema(r io.Reader) (*feature.Schema, error) {
	decls, err := ReadDeclarations(r)
	if err != nil {
		return nil, err
	}
	return feature.Declare(decls)
}

/*
ReadSchemaFromFile takes a filepath string, opens it and uses ReadSchema to
parse it and return a schema or an error.
*/
func ReadSchemaFromFile(filepath string) (*feature.Schema, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading names file %s: %v", filepath, err)
	}
	defer f.Close()
	s, err := ReadSchema(f)
	if err != nil {
		err = fmt.Errorf("parsing names file %s: %w", filepath, err)
	}
	return s, err
}

func parseLine(fields []string) (feature.Declaration, error) {
	d := feature.Declaration{}
	if len(fields) < 2 {
		return d, fmt.Errorf("expected a name and a kind, got %q", strings.Join(fields, " "))
	}
	d.Name = fields[0]
	rest := fields[2:]
	if len(rest) > 0 && (rest[0] == "y" || rest[0] == "n") {
		d.Label = rest[0] == "y"
		rest = rest[1:]
	}
	switch fields[1] {
	case "c":
		d.Kind = feature.Continuous
		return d, parseContinuous(&d, rest)
	case "d":
		d.Kind = feature.Discrete
		return d, parseDiscrete(&d, rest)
	}
	return d, fmt.Errorf("feature %s has unknown kind %q", d.Name, fields[1])
}

func parseContinuous(d *feature.Declaration, fields []string) error {
	switch len(fields) {
	case 0:
		return nil
	case 2, 3:
	default:
		return fmt.Errorf("continuous feature %s expects lower and upper bounds and an optional precision", d.Name)
	}
	lower, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("parsing lower bound of %s: %v", d.Name, err)
	}
	upper, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("parsing upper bound of %s: %v", d.Name, err)
	}
	d.Lower, d.Upper = &lower, &upper
	if len(fields) == 3 {
		precision, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("parsing precision of %s: %v", d.Name, err)
		}
		d.Precision = &precision
	}
	return nil
}

func parseDiscrete(d *feature.Declaration, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("discrete feature %s has no possibility count", d.Name)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("parsing possibility count of %s: %v", d.Name, err)
	}
	d.Count = &count
	for _, f := range fields[1:] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("parsing value of %s: %v", d.Name, err)
		}
		d.Values = append(d.Values, v)
	}
	return nil
}
