package schema

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// fileDocument is the YAML shape of a schema configuration file.
type fileDocument struct {
	ProductType string  `yaml:"product_type"`
	Fields      []Field `yaml:"fields"`
}

// LoadFile reads a schema configuration document from a YAML file. The
// document fully replaces the compiled defaults for its product type.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	productType, err := records.ParseProductType(doc.ProductType)
	if err != nil {
		return nil, errors.NewConfigError("schema", "invalid product_type in "+path, err)
	}
	if len(doc.Fields) == 0 {
		return nil, errors.NewConfigError("schema", "no fields defined in "+path, nil)
	}

	return New(productType, doc.Fields)
}

// MarshalYAML serializes a schema back to its configuration document form,
// used by the CLI to dump compiled defaults as a starting point for editing.
func (s *Schema) MarshalYAML() ([]byte, error) {
	doc := fileDocument{
		ProductType: s.productType.String(),
		Fields:      s.Fields(),
	}
	return yaml.Marshal(doc)
}
