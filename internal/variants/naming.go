package variants

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
)

const combinationNameSeparator = " - "

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)
	slugDashes   = regexp.MustCompile(`-+`)
)

// Slugify lowercases text, turns every non-alphanumeric rune into a dash and
// collapses the dashes.
func Slugify(text string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(text), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CombinationName joins the selected values in type order, e.g. "M - Blue".
func CombinationName(values []string) string {
	return strings.Join(values, combinationNameSeparator)
}

// SKUSuffix is the first length hex chars of the md5 of the values joined by "-".
func SKUSuffix(values []string, length int) string {
	sum := md5.Sum([]byte(strings.Join(values, "-")))
	digest := hex.EncodeToString(sum[:])
	if length <= 0 || length > len(digest) {
		length = len(digest)
	}
	return digest[:length]
}

// SynthesizeSKU builds "{productSKU}-{suffix}" for a combination.
func SynthesizeSKU(productSKU string, values []string, length int) string {
	return productSKU + "-" + SKUSuffix(values, length)
}

// GenerateVariantName renders "TypeName: value" pairs joined by ", " in
// selection order. Selections whose type is not among types are skipped.
func GenerateVariantName(types []models.VariantType, selections []models.VariantSelection) string {
	names := make(map[uuid.UUID]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	parts := make([]string, 0, len(selections))
	for _, sel := range selections {
		name, ok := names[sel.VariantTypeID]
		if !ok {
			continue
		}
		parts = append(parts, name+": "+sel.Value)
	}
	return strings.Join(parts, ", ")
}
