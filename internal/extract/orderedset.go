package extract

// orderedSet is an insertion-order-preserving string set. Discovery order
// is semantically significant for extraction: it decides which duplicate
// representation survives and the display order of detected values.
type orderedSet struct {
	seen map[string]struct{}
	vals []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// add inserts display under the dedupe key. Returns false when the key
// was already present; the first-seen display value wins.
func (s *orderedSet) add(key, display string) bool {
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.vals = append(s.vals, display)
	return true
}

func (s *orderedSet) values() []string { return s.vals }

func (s *orderedSet) len() int { return len(s.vals) }
