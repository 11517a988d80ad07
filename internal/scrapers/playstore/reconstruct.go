package playstore

import (
	"appdeck/pkg/jsontree"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReconstructOptions are the tunables of the record heuristics. The page has no
// documented schema so every one of these is an observation, not a contract.
type ReconstructOptions struct {
	// IdentifierPrefix is the prefix every app identifier starts with.
	IdentifierPrefix string
	// IconPrefix is the prefix of strings considered to be icon urls.
	IconPrefix string
	// DefaultIconUrl is used for records without an icon.
	DefaultIconUrl string
	// NameIndex is the position in a record's array that usually holds the display name,
	// nil means DefaultNameIndex and a negative value disables the positional lookup.
	NameIndex *int
	// MaxNameLength is the exclusive upper bound on the number of characters of a
	// display name.
	MaxNameLength int
}

// Reconstructor recovers AppRecords from the schemaless catalog payload.
type Reconstructor struct {
	opts      ReconstructOptions
	nameIndex int
}

func NewReconstructor(opts ReconstructOptions) Reconstructor {
	if opts.IdentifierPrefix == "" {
		opts.IdentifierPrefix = DefaultIdentifierPrefix
	}
	if opts.IconPrefix == "" {
		opts.IconPrefix = DefaultIconPrefix
	}
	if opts.DefaultIconUrl == "" {
		opts.DefaultIconUrl = DefaultIconUrl
	}
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = DefaultMaxNameLength
	}
	nameIndex := DefaultNameIndex
	if opts.NameIndex != nil {
		nameIndex = *opts.NameIndex
	}
	return Reconstructor{opts: opts, nameIndex: nameIndex}
}

// collector accumulates records across one traversal.
type collector struct {
	records []AppRecord
	seen    map[string]struct{}
}

func newCollector() *collector {
	return &collector{seen: map[string]struct{}{}}
}

func (c *collector) add(record AppRecord) {
	c.records = append(c.records, record)
	c.seen[record.Identifier] = struct{}{}
}

func (c *collector) has(identifier string) bool {
	_, ok := c.seen[identifier]
	return ok
}

// Reconstruct walks root depth first and returns one record per distinct identifier,
// in the order they were first encountered.
func (r Reconstructor) Reconstruct(root jsontree.Value) []AppRecord {
	c := newCollector()
	r.visit(root, c)
	return c.records
}

func (r Reconstructor) visit(v jsontree.Value, c *collector) {
	switch node := v.(type) {
	case jsontree.Array:
		record, ok := r.candidate(node, c)
		if ok {
			c.add(record)
		}
		// siblings and descendants may hold other apps
		for _, child := range node {
			r.visit(child, c)
		}
	case jsontree.Object:
		for _, m := range node {
			r.visit(m.Value, c)
		}
	case jsontree.String, jsontree.Number, jsontree.Bool, jsontree.Null, nil:
	}
}

func (r Reconstructor) candidate(node jsontree.Array, c *collector) (AppRecord, bool) {
	pool := jsontree.Strings(node)

	identifier := ""
	for _, s := range pool {
		if strings.HasPrefix(s, r.opts.IdentifierPrefix) {
			identifier = s
			break
		}
	}
	if identifier == "" || c.has(identifier) {
		return AppRecord{}, false
	}

	iconUrl := r.opts.DefaultIconUrl
	for _, s := range pool {
		if strings.HasPrefix(s, r.opts.IconPrefix) {
			iconUrl = s
			break
		}
	}

	return AppRecord{
		DisplayName: r.displayName(node, pool, identifier),
		Identifier:  identifier,
		IconUrl:     iconUrl,
	}, true
}

func (r Reconstructor) displayName(node jsontree.Array, pool []string, identifier string) string {
	if r.nameIndex >= 0 {
		child, ok := node.Index(r.nameIndex)
		if ok {
			str, isString := child.(jsontree.String)
			if isString && string(str) != "null" && r.plausibleName(string(str)) {
				return string(str)
			}
		}
	}

	for _, s := range pool {
		if s == identifier || strings.HasPrefix(s, r.opts.IconPrefix) {
			continue
		}
		if r.plausibleName(s) {
			return s
		}
	}

	return identifier
}

func (r Reconstructor) plausibleName(s string) bool {
	if utf8.RuneCountInString(s) >= r.opts.MaxNameLength {
		return false
	}
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// DefaultReconstructOptions returns the heuristics observed on the developer page.
func DefaultReconstructOptions(defaultIconUrl string) ReconstructOptions {
	nameIndex := DefaultNameIndex
	return ReconstructOptions{
		IdentifierPrefix: DefaultIdentifierPrefix,
		IconPrefix:       DefaultIconPrefix,
		DefaultIconUrl:   defaultIconUrl,
		NameIndex:        &nameIndex,
		MaxNameLength:    DefaultMaxNameLength,
	}
}
