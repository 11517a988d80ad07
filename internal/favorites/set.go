package favorites

// Set is a set of favorited app identifiers. A Set received from a Store is never
// mutated afterwards, receivers must not mutate it either.
type Set map[string]struct{}

func NewSet(identifiers ...string) Set {
	set := make(Set, len(identifiers))
	for _, id := range identifiers {
		set[id] = struct{}{}
	}
	return set
}

func (s Set) Has(identifier string) bool {
	_, ok := s[identifier]
	return ok
}
