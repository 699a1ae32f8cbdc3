package kernel

import (
	"strings"
	"testing"
)

func TestMemoryMap(t *testing.T) {
	k, err := New(Config{RAMBase: 0x2000_0000, BlockSize: 64, Blocks: 4}, []ProcInit{
		{PID: 3, Priority: PriorityLow, StackSize: 0x200, Entry: waitForever},
		{PID: 1, Priority: PriorityHigh, StackSize: 0x81, Entry: waitForever},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer k.Halt()

	regions := k.MemoryMap()
	if len(regions) != 4 {
		t.Fatalf("MemoryMap = %v, want pool and 3 stacks", regions)
	}
	if regions[0].Base != 0x2000_0000 || regions[0].End != 0x2000_0100 {
		t.Fatalf("pool region = %v, want 0x20000000-0x20000100", regions[0])
	}
	if regions[1].Base != regions[0].End {
		t.Fatalf("lowest stack starts at %#x, want %#x", regions[1].Base, regions[0].End)
	}
	for i := 1; i < len(regions); i++ {
		if regions[i].Base < regions[i-1].End {
			t.Fatalf("regions overlap: %v then %v", regions[i-1], regions[i])
		}
	}

	// pid 1 was carved last with its size rounded up to 8 bytes.
	if !strings.Contains(regions[1].Name, "pid 1") || regions[1].End-regions[1].Base != 0x88 {
		t.Fatalf("lowest stack = %v, want pid 1 with 0x88 bytes", regions[1])
	}
	if !strings.Contains(regions[3].Name, "pid 0") {
		t.Fatalf("highest stack = %v, want the null process", regions[3])
	}
}
