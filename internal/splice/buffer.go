// Package splice applies insertions to a text against its original, unmutated offsets.
package splice

import (
	"fmt"
	"sort"
	"strings"
)

// Edit is a pending insertion at a byte offset of the original text
type Edit struct {
	Offset int
	Text   string
	seq    int
}

// Buffer collects insertions keyed by offsets into the original text.
// Insertion order does not matter: every offset refers to the source as it was
// before any edit, so earlier insertions cannot shift later ones.
type Buffer struct {
	src   string
	edits []Edit
}

// New creates a buffer over src
func New(src string) *Buffer {
	return &Buffer{src: src}
}

// Source returns the original text
func (b *Buffer) Source() string {
	return b.src
}

// Insert schedules text at offset. Several insertions at one offset keep their call order.
func (b *Buffer) Insert(offset int, text string) error {
	if offset < 0 || offset > len(b.src) {
		return fmt.Errorf("insert at %d: out of range [0,%d]", offset, len(b.src))
	}
	b.edits = append(b.edits, Edit{Offset: offset, Text: text, seq: len(b.edits)})
	return nil
}

// Len returns the number of scheduled insertions
func (b *Buffer) Len() int {
	return len(b.edits)
}

// Edits returns the scheduled insertions ordered by offset
func (b *Buffer) Edits() []Edit {
	edits := make([]Edit, len(b.edits))
	copy(edits, b.edits)
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Offset != edits[j].Offset {
			return edits[i].Offset < edits[j].Offset
		}
		return edits[i].seq < edits[j].seq
	})
	return edits
}

// String renders the source with all insertions applied
func (b *Buffer) String() string {
	if len(b.edits) == 0 {
		return b.src
	}

	var sb strings.Builder
	size := len(b.src)
	for _, e := range b.edits {
		size += len(e.Text)
	}
	sb.Grow(size)

	last := 0
	for _, e := range b.Edits() {
		sb.WriteString(b.src[last:e.Offset])
		sb.WriteString(e.Text)
		last = e.Offset
	}
	sb.WriteString(b.src[last:])
	return sb.String()
}

// Shifted returns a view that adds base to every offset, for splicing a sub-block
// parsed on its own back into the enclosing file.
func (b *Buffer) Shifted(base int) *Shifted {
	return &Shifted{buf: b, base: base}
}

// Shifted forwards insertions to a parent buffer at a fixed offset
type Shifted struct {
	buf  *Buffer
	base int
}

// Insert schedules text at base+offset in the parent buffer
func (s *Shifted) Insert(offset int, text string) error {
	return s.buf.Insert(s.base+offset, text)
}
