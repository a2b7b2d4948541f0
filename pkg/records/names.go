package records

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/specfuse/specfuse/pkg/errors"
)

// ImageName describes a product image filename following the convention
// {product_type}_{source}_{date}_{hash}.{ext}, where hash is a content
// address of the source image URL. The core only echoes filenames it is
// given; these helpers exist so callers and tests agree on the format.
type ImageName struct {
	ProductType ProductType
	Source      SourceID
	Date        Date
	Hash        string
	Ext         string
}

var imageNameRe = regexp.MustCompile(`^([a-z]+)_([a-z_]+)_(\d{8})_([0-9a-f]+)\.([A-Za-z0-9]+)$`)

// String formats the image filename.
func (n ImageName) String() string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", n.ProductType, n.Source, n.Date, n.Hash, n.Ext)
}

// ParseImageName parses a filename into its components.
func ParseImageName(name string) (ImageName, error) {
	m := imageNameRe.FindStringSubmatch(name)
	if m == nil {
		return ImageName{}, errors.NewValidationError("image", name, "does not match {product_type}_{source}_{date}_{hash}.{ext}")
	}
	pt, err := ParseProductType(m[1])
	if err != nil {
		return ImageName{}, err
	}
	date, err := ParseDate(m[3])
	if err != nil {
		return ImageName{}, err
	}
	return ImageName{
		ProductType: pt,
		Source:      SourceID(m[2]),
		Date:        date,
		Hash:        m[4],
		Ext:         strings.ToLower(m[5]),
	}, nil
}

// ImageHash content-addresses an image URL for use in image filenames.
func ImageHash(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

// ScrapeName describes a raw source payload filename following the
// convention {product_type}_{source}_{YYYYMMDD}_{HHMMSS}.{json|csv}. The
// CLI uses it to group raw payload files by date into pipeline inputs.
type ScrapeName struct {
	ProductType ProductType
	Source      SourceID
	Date        Date
	Time        string // HHMMSS
	Ext         string // json or csv
}

var scrapeNameRe = regexp.MustCompile(`^([a-z]+)_([a-z_]+)_(\d{8})_(\d{6})\.(json|csv)$`)

// String formats the scrape filename.
func (n ScrapeName) String() string {
	ext := n.Ext
	if ext == "" {
		ext = "json"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", n.ProductType, n.Source, n.Date, n.Time, ext)
}

// ParseScrapeName parses a raw payload filename into its components.
func ParseScrapeName(name string) (ScrapeName, error) {
	m := scrapeNameRe.FindStringSubmatch(name)
	if m == nil {
		return ScrapeName{}, errors.NewValidationError("scrape", name, "does not match {product_type}_{source}_{date}_{time}.{json|csv}")
	}
	pt, err := ParseProductType(m[1])
	if err != nil {
		return ScrapeName{}, err
	}
	date, err := ParseDate(m[3])
	if err != nil {
		return ScrapeName{}, err
	}
	return ScrapeName{
		ProductType: pt,
		Source:      SourceID(m[2]),
		Date:        date,
		Time:        m[4],
		Ext:         m[5],
	}, nil
}
