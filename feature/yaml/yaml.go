/*
Package yaml provides methods to parse feature schemas, also known as
metadata, from YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/pbanos/sapling/feature"
	yaml "gopkg.in/yaml.v2"
)

type featureDoc struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Label     bool     `yaml:"label"`
	Count     *int     `yaml:"count"`
	Values    []int    `yaml:"values"`
	Lower     *float64 `yaml:"lower"`
	Upper     *float64 `yaml:"upper"`
	Precision *int     `yaml:"precision"`
}

/*
ReadDeclarations takes a slice of bytes with feature metadata in YAML
and returns the declarations parsed from it or an error.
The YAML is expected to be an object containing a features property: a list
of objects with the name and type ('discrete' or 'continuous') of each
feature. Discrete features list their integer values, may declare their
count and one of them must be flagged as label. Continuous features may
declare lower and upper bounds and a precision.
*/
func ReadDeclarations(md []byte) ([]feature.Declaration, error) {
	metadata := struct {
		Features []featureDoc `yaml:"features"`
	}{}
	err := yaml.UnmarshalStrict(md, &metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing yml features: %v", err)
	}
	if len(metadata.Features) == 0 {
		return nil, fmt.Errorf("metadata has no feature information")
	}
	decls := make([]feature.Declaration, 0, len(metadata.Features))
	for i, fd := range metadata.Features {
		d := feature.Declaration{
			Name:      fd.Name,
			Label:     fd.Label,
			Count:     fd.Count,
			Values:    fd.Values,
			Lower:     fd.Lower,
			Upper:     fd.Upper,
			Precision: fd.Precision,
		}
		switch fd.Type {
		case "discrete", "d":
			d.Kind = feature.Discrete
		case "continuous", "c":
			d.Kind = feature.Continuous
		default:
			return nil, fmt.Errorf("feature %d (%q) has invalid type %q", i, fd.Name, fd.Type)
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// ReadSchema parses the YAML metadata in md into a validated schema
func ReadSchema(md []byte) (*feature.Schema, error) {
	decls, err := ReadDeclarations(md)
	if err != nil {
		return nil, err
	}
	return feature.Declare(decls)
}

/*
ReadSchemaFromFile takes a filepath string, reads its contents and uses
ReadSchema to parse it and return a schema or an error.
*/
func ReadSchemaFromFile(filepath string) (*feature.Schema, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %v", filepath, err)
	}
	s, err := ReadSchema(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %w", filepath, err)
	}
	return s, err
}
