package catalog

import (
	"appdeck/internal/favorites"
	"appdeck/internal/scrapers/playstore"
	"slices"
	"strings"
)

// Assemble returns a copy of records sorted by display name, ignoring case.
// Records with equal names keep their discovery order.
func Assemble(records []playstore.AppRecord) []playstore.AppRecord {
	sorted := make([]playstore.AppRecord, len(records))
	copy(sorted, records)

	slices.SortStableFunc(sorted, func(a, b playstore.AppRecord) int {
		return strings.Compare(
			strings.ToLower(a.DisplayName),
			strings.ToLower(b.DisplayName),
		)
	})
	return sorted
}

// Filter returns the records whose identifier is in set, in catalog order.
func Filter(records []playstore.AppRecord, set favorites.Set) []playstore.AppRecord {
	out := []playstore.AppRecord{}
	for _, r := range records {
		if set.Has(r.Identifier) {
			out = append(out, r)
		}
	}
	return out
}
