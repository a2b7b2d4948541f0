package reconcile

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/specfuse/specfuse/pkg/errors"
	"github.com/specfuse/specfuse/pkg/records"
)

// Rank assigns a priority to one source. Higher priority wins conflicts;
// the position of a Rank in its slice is the configuration order used to
// break priority ties.
type Rank struct {
	Source   records.SourceID `yaml:"source" json:"source"`
	Priority int              `yaml:"priority" json:"priority"`
}

// DefaultRanks returns the default source priority order: internal data
// beats manufacturer-derived extracts, which beat the LLM normalization
// pass, which beats marketplace scrapes. The LLM slot is deliberately
// configuration like any other source, never hard-coded trust.
func DefaultRanks() []Rank {
	return []Rank{
		{Source: records.SourceInternalCSV, Priority: 100},
		{Source: records.SourcePDFExtract, Priority: 90},
		{Source: records.SourceLLMNormalized, Priority: 80},
		{Source: records.SourceAmazon, Priority: 70},
		{Source: records.SourceFlipkart, Priority: 60},
	}
}

// rankFile is the YAML shape of a priority configuration document.
type rankFile struct {
	ProductType string `yaml:"product_type"`
	Priorities  []Rank `yaml:"priorities"`
}

// LoadRanks reads a priority configuration document from a YAML file.
func LoadRanks(path string) (records.ProductType, []Rank, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return "", nil, errors.WrapIO("read", path, err)
	}

	var doc rankFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, errors.WrapParse("yaml", path, err)
	}

	productType, err := records.ParseProductType(doc.ProductType)
	if err != nil {
		return "", nil, errors.NewConfigError("priorities", "invalid product_type in "+path, err)
	}
	if len(doc.Priorities) == 0 {
		return "", nil, errors.NewConfigError("priorities", "no priorities defined in "+path, nil)
	}

	seen := make(map[records.SourceID]bool, len(doc.Priorities))
	for _, r := range doc.Priorities {
		if r.Source == "" {
			return "", nil, errors.NewConfigError("priorities", "rank with empty source in "+path, nil)
		}
		if seen[r.Source] {
			return "", nil, errors.NewConfigError("priorities", "source "+r.Source.String()+" listed twice in "+path, nil)
		}
		seen[r.Source] = true
	}

	return productType, doc.Priorities, nil
}
