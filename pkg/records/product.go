// Package records defines the core data model for the specfuse
// reconciliation pipeline: per-source partial records, field candidates,
// and the reconciled master record with its normalization metadata.
package records

import (
	"strings"

	"github.com/specfuse/specfuse/pkg/errors"
)

// ProductType identifies a product category with its own canonical schema.
type ProductType string

// Supported product types.
const (
	ProductTypePhones ProductType = "phones"
	ProductTypeTV     ProductType = "tv"
	ProductTypeWatch  ProductType = "watch"
)

// ProductTypes returns all supported product types in a fixed order.
func ProductTypes() []ProductType {
	return []ProductType{ProductTypePhones, ProductTypeTV, ProductTypeWatch}
}

// String returns the string representation of a product type.
func (p ProductType) String() string {
	return string(p)
}

// Valid reports whether the product type is one of the supported values.
func (p ProductType) Valid() bool {
	switch p {
	case ProductTypePhones, ProductTypeTV, ProductTypeWatch:
		return true
	default:
		return false
	}
}

// ParseProductType parses a string into a ProductType.
func ParseProductType(s string) (ProductType, error) {
	p := ProductType(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.NewValidationError("product_type", s, "must be one of phones, tv, watch")
	}
	return p, nil
}

// SourceID identifies one originating system contributing raw field data.
type SourceID string

// Well-known source identifiers. Any other SourceID is accepted as long as
// it appears in the reconciler's priority configuration.
const (
	SourceAmazon        SourceID = "amazon"
	SourceFlipkart      SourceID = "flipkart"
	SourceInternalCSV   SourceID = "internal_csv"
	SourcePDFExtract    SourceID = "pdf_extract"
	SourceLLMNormalized SourceID = "llm_normalized"
)

// String returns the string representation of a source ID.
func (s SourceID) String() string {
	return string(s)
}
