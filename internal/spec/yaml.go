// =============================================================================
// ISO8583 Trace Validator - YAML Specification Loader
// =============================================================================
//
// Loads a specification table from a YAML file. The expected document shape
// mirrors the switch vendor's spec sheet:
//
//   data_elements:
//     - field: "039"
//       name: "Response Code"
//       length: "2"
//       format: "n"
//       usage:
//         "0110": "M"
//         "0210": "M"
//     - field: "100"
//       name: "Receiving Institution ID Code"
//       length: "LLVAR"
//       format: "n"
//       usage:
//         all: "M"
//
// Field numbers are normalized on load ("039" and "39" address the same
// element). Usage keys are MTI strings or the wildcard "all".
//
// =============================================================================

package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk shape of a YAML spec file.
type yamlDocument struct {
	DataElements []yamlElement `yaml:"data_elements"`
}

// yamlElement is a single data-element entry.
type yamlElement struct {
	Field  string            `yaml:"field"`
	Name   string            `yaml:"name"`
	Length string            `yaml:"length"`
	Format string            `yaml:"format"`
	Usage  map[string]string `yaml:"usage"`
}

// LoadYAML reads a specification table from a YAML file.
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse spec file: %w", err)
	}
	if len(doc.DataElements) == 0 {
		return nil, fmt.Errorf("spec file %s defines no data elements", path)
	}

	rules := make(map[string]*DataElementRule, len(doc.DataElements))
	order := make([]string, 0, len(doc.DataElements))
	for i, e := range doc.DataElements {
		if e.Field == "" {
			return nil, fmt.Errorf("spec file %s: entry %d has no field number", path, i+1)
		}
		length, err := ParseLength(e.Length)
		if err != nil {
			return nil, fmt.Errorf("spec file %s: field %s: %w", path, e.Field, err)
		}
		usage := e.Usage
		if usage == nil {
			usage = map[string]string{}
		}
		rules[e.Field] = &DataElementRule{
			Name:   e.Name,
			Length: length,
			Format: ParseFormat(e.Format),
			Usage:  usage,
		}
		order = append(order, e.Field)
	}

	return NewTable(rules, order), nil
}
