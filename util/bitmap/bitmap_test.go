package bitmap_test

import (
	"testing"

	"github.com/cstruct/microfs/util/bitmap"
)

func TestFirstFreeLowestIndexFirst(t *testing.T) {
	bm := bitmap.NewBits(16)
	bm.Set(0)
	bm.Set(1)
	bm.Set(2)

	loc := bm.FirstFree(0)
	if loc != 3 {
		t.Fatalf("expected first free bit 3, got %d", loc)
	}
}

func TestSetClearRoundtrip(t *testing.T) {
	bm := bitmap.NewBits(8)
	if err := bm.Set(5); err != nil {
		t.Fatalf("set: %v", err)
	}
	set, err := bm.IsSet(5)
	if err != nil || !set {
		t.Fatalf("expected bit 5 set, got %v %v", set, err)
	}
	if err := bm.Clear(5); err != nil {
		t.Fatalf("clear: %v", err)
	}
	set, err = bm.IsSet(5)
	if err != nil || set {
		t.Fatalf("expected bit 5 clear, got %v %v", set, err)
	}
}

func TestCountSet(t *testing.T) {
	bm := bitmap.NewBits(16)
	for _, i := range []int{0, 3, 9, 15} {
		bm.Set(i)
	}
	if got := bm.CountSet(); got != 4 {
		t.Fatalf("expected 4 set bits, got %d", got)
	}
}

func TestFromBytesToBytesRoundtrip(t *testing.T) {
	orig := []byte{0xFF, 0x03}
	bm := bitmap.FromBytes(orig)
	out := bm.ToBytes()
	if len(out) != len(orig) {
		t.Fatalf("expected %d bytes, got %d", len(orig), len(out))
	}
	for i := range orig {
		if out[i] != orig[i] {
			t.Fatalf("byte %d: expected %#x, got %#x", i, orig[i], out[i])
		}
	}
}
