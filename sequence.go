package slotline

// Sequence hands out monotonically increasing identifiers. Constructing components own
// one each instead of sharing package-level counters, so tests can reset them.
type Sequence struct {
	next int
}

func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

func (seq *Sequence) Next() int {
	id := seq.next
	seq.next++
	return id
}
