package commands

import (
	"appdeck/internal/scrapers/playstore"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// minNameSimilarity is the lowest Jaro-Winkler similarity accepted when
// resolving an app by its display name.
const minNameSimilarity = 0.85

// resolveIdentifier returns the identifier `query` refers to. Queries carrying
// the identifier prefix are taken as identifiers, anything else is matched
// against the display names of records.
func resolveIdentifier(query, identifierPrefix string, records []playstore.AppRecord) (string, error) {
	if strings.HasPrefix(query, identifierPrefix) {
		return query, nil
	}

	target := strings.ToLower(query)
	var best playstore.AppRecord
	bestSimilarity := 0.0
	for _, r := range records {
		similarity := matchr.JaroWinkler(strings.ToLower(r.DisplayName), target, false)
		if similarity > bestSimilarity {
			best = r
			bestSimilarity = similarity
		}
	}

	if bestSimilarity < minNameSimilarity {
		return "", fmt.Errorf("no app named like '%s' in the catalog", query)
	}
	return best.Identifier, nil
}
