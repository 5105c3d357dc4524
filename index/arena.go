package index

import "github.com/CrystallineCore/likematch/internal/conv"

// arena packs every record's value bytes into one contiguous buffer,
// addressed by offset, rather than one []byte allocation per record. At
// the target scale of 10⁶ short strings this avoids 10⁶ small heap
// allocations.
type arena struct {
	data []byte
	offs []uint32 // len n+1; record id's bytes are data[offs[id]:offs[id+1]]
}

func (a *arena) value(id uint32) []byte {
	if int(id)+1 >= len(a.offs) {
		return nil
	}
	return a.data[a.offs[id]:a.offs[id+1]]
}

func (a *arena) len() int {
	if len(a.offs) == 0 {
		return 0
	}
	return len(a.offs) - 1
}

// arenaBuilder accumulates record values in scan order before the arena is
// frozen into its final contiguous form.
type arenaBuilder struct {
	data []byte
	offs []uint32
}

func newArenaBuilder() *arenaBuilder {
	return &arenaBuilder{offs: []uint32{0}}
}

func (b *arenaBuilder) append(value []byte) {
	b.data = append(b.data, value...)
	// The arena's offset table is uint32-addressed; IntToUint32 panics
	// rather than silently wrapping if total stored bytes ever exceed 4GB.
	b.offs = append(b.offs, conv.IntToUint32(len(b.data)))
}

func (b *arenaBuilder) build() arena {
	return arena{data: b.data, offs: b.offs}
}
