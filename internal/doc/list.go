package doc

// List is an ordered sequence of unique ids (an axis). Mutations emit one
// primitive update each; the whole-array Replace exists for reorders that
// must land atomically on every replica.
type List struct {
	doc  *Doc
	name string
	ids  []string
}

func (l *List) Push(id string) {
	l.doc.Apply(Update{Kind: UpdateListInsert, Target: l.name, Index: -1, ID: id})
}

// Insert inserts id at index, clamping to the current bounds. Index -1 is
// the append sentinel (as is anything past the end); other negative
// indexes clamp to the front.
func (l *List) Insert(index int, id string) {
	l.doc.Apply(Update{Kind: UpdateListInsert, Target: l.name, Index: index, ID: id})
}

// Delete removes id if present. Deleting an absent id is a no-op, so
// replayed deletes converge.
func (l *List) Delete(id string) {
	l.doc.Apply(Update{Kind: UpdateListDelete, Target: l.name, ID: id})
}

// Replace swaps the whole sequence in one update.
func (l *List) Replace(ids []string) {
	l.doc.Apply(Update{Kind: UpdateListReplace, Target: l.name, List: append([]string{}, ids...)})
}

func (l *List) ToArray() []string {
	l.doc.mu.Lock()
	defer l.doc.mu.Unlock()
	return append([]string{}, l.ids...)
}

func (l *List) Len() int {
	l.doc.mu.Lock()
	defer l.doc.mu.Unlock()
	return len(l.ids)
}

func (l *List) At(index int) (string, bool) {
	l.doc.mu.Lock()
	defer l.doc.mu.Unlock()
	if index < 0 || index >= len(l.ids) {
		return "", false
	}
	return l.ids[index], true
}

// IndexOf returns the position of id, or -1.
func (l *List) IndexOf(id string) int {
	l.doc.mu.Lock()
	defer l.doc.mu.Unlock()
	for i, v := range l.ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (l *List) insertLocked(index int, id string) {
	for _, v := range l.ids {
		if v == id {
			return
		}
	}
	// -1 is Push's append sentinel; other negatives clamp to the front.
	switch {
	case index == -1 || index > len(l.ids):
		index = len(l.ids)
	case index < 0:
		index = 0
	}
	l.ids = append(l.ids, "")
	copy(l.ids[index+1:], l.ids[index:])
	l.ids[index] = id
}

func (l *List) deleteLocked(id string) {
	for i, v := range l.ids {
		if v == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return
		}
	}
}

func (l *List) replaceLocked(ids []string) {
	l.ids = append([]string{}, ids...)
}
