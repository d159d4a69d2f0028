package collection

// Selection is a set of order ids that remembers insertion order.
type Selection struct {
	ids   []string
	index map[string]int
}

// Has reports membership.
func (s *Selection) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Toggle flips membership of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		s.remove(id)
		return false
	}
	s.add(id)
	return true
}

// IDs returns the selected ids in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
	s.index = nil
}

// SetAll replaces the selection with ids, dropping duplicates.
func (s *Selection) SetAll(ids []string) {
	s.Clear()
	for _, id := range ids {
		if !s.Has(id) {
			s.add(id)
		}
	}
}

func (s *Selection) add(id string) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *Selection) remove(id string) {
	pos := s.index[id]
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.ids); i++ {
		s.index[s.ids[i]] = i
	}
}
