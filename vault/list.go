package vault

// List holds entries in file order. Positions are 1-based, as shown to the
// user; removing an entry renumbers the ones after it.
type List struct {
	entries []*Entry
}

func NewList() *List { return &List{} }

func (l *List) Len() int { return len(l.entries) }

// Valid reports whether n designates an existing entry.
func (l *List) Valid(n int) bool { return n >= 1 && n <= len(l.entries) }

// At returns entry n, or nil when n is out of range.
func (l *List) At(n int) *Entry {
	if !l.Valid(n) {
		return nil
	}
	return l.entries[n-1]
}

func (l *List) Append(e *Entry) { l.entries = append(l.entries, e) }

// Replace swaps entry n for e and reports whether n existed.
func (l *List) Replace(n int, e *Entry) bool {
	if !l.Valid(n) {
		return false
	}
	l.entries[n-1] = e
	return true
}

// Remove deletes entry n and reports whether n existed.
func (l *List) Remove(n int) bool {
	if !l.Valid(n) {
		return false
	}
	copy(l.entries[n-1:], l.entries[n:])
	l.entries[len(l.entries)-1] = nil
	l.entries = l.entries[:len(l.entries)-1]
	return true
}

// Each calls fn with every entry and its position until fn returns false.
func (l *List) Each(fn func(n int, e *Entry) bool) {
	for i, e := range l.entries {
		if !fn(i+1, e) {
			return
		}
	}
}

// Clear wipes every entry and empties the list.
func (l *List) Clear() {
	for i, e := range l.entries {
		if e != nil {
			*e = Entry{}
		}
		l.entries[i] = nil
	}
	l.entries = nil
}
