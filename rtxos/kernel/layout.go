package kernel

import (
	"fmt"
	"sort"
)

// Region is a span [Base, End) of the RAM image.
type Region struct {
	Name string
	Base uint32
	End  uint32
}

func (r Region) String() string {
	return fmt.Sprintf("%#010x-%#010x %6d %s", r.Base, r.End, r.End-r.Base, r.Name)
}

// MemoryMap lists the RAM image in address order: the block pool first,
// then process stacks, which are carved from the top of RAM downwards.
func (k *Kernel) MemoryMap() []Region {
	k.mu.Lock()
	defer k.mu.Unlock()

	pool := Region{
		Name: fmt.Sprintf("pool: %d blocks of %d bytes", k.pool.total, k.pool.size),
		Base: k.pool.base,
		End:  k.pool.base + k.pool.size*uint32(k.pool.total),
	}
	out := []Region{pool}

	for i := range k.pcbs {
		p := &k.pcbs[i]
		if !p.present || p.iproc {
			continue
		}
		out = append(out, Region{
			Name: fmt.Sprintf("stack: pid %d", p.pid),
			Base: p.stackTop - p.stackSize,
			End:  p.stackTop,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Base < out[j].Base })
	return out
}
