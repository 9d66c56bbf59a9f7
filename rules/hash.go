package rules

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
)

// Hash calculates a fingerprint of the table using the provided hash function.
//
// Two tables with the same name and the same rules in the same order have the same fingerprint.
// Function rules contribute only their name and category.
func (t Table) Hash(h hash.Hash) {
	s := hasher{h: h}
	s.table(t)
	s.flush()
}

type hasher struct {
	h hash.Hash
	b bytes.Buffer
}

func (h *hasher) flush() {
	h.h.Write(h.b.Bytes())
	h.b.Reset()
}

func (h *hasher) table(t Table) {
	h.string(t.name)
	h.number(int64(len(t.rules)))
	for i := range t.rules {
		h.rule(&t.rules[i])
	}
}

func (h *hasher) rule(r *Rule) {
	h.string(r.Name)
	h.number(r.Category)
	h.number(r.Pattern == nil)
	if r.Pattern != nil {
		h.string(r.Pattern.String())
		h.string(r.Template)
	}
}

func (h *hasher) string(s string) {
	h.number(uint64(len(s)))
	h.flush()
	h.h.Write([]byte(s))
}

func (h *hasher) number(a any) {
	err := binary.Write(&h.b, binary.LittleEndian, a)
	if err != nil {
		panic(fmt.Sprintf("failed to hash %T", a))
	}
}
