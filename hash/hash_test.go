package hash

import (
	"testing"

	"github.com/flashmob/go-mailheader/header"
)

func TestFinalizeEmptyIsDeterministic(t *testing.T) {
	if NewFinalizer().Finalize() != NewFinalizer().Finalize() {
		t.Error("Finalize() of two empty Finalizers differ")
	}
}

func TestAbsorbOrderMatters(t *testing.T) {
	a := NewFinalizer()
	a.Absorb("from")
	a.Absorb("to")

	b := NewFinalizer()
	b.Absorb("to")
	b.Absorb("from")

	if a.Finalize() == b.Finalize() {
		t.Error("Finalize() matched for differently-ordered absorbs")
	}
}

func TestComputeHeadersHashExcludesReceived(t *testing.T) {
	table := header.NewTable()
	table.Insert(&header.Header{Name: "from", Order: 0})
	table.Insert(&header.Header{Name: "received", Order: 1, Type: header.Received})
	table.Insert(&header.Header{Name: "to", Order: 2})

	withReceived := ComputeHeadersHash(table)

	table2 := header.NewTable()
	table2.Insert(&header.Header{Name: "from", Order: 0})
	table2.Insert(&header.Header{Name: "to", Order: 1})

	withoutReceived := ComputeHeadersHash(table2)

	if withReceived != withoutReceived {
		t.Errorf("hash with Received = %q, want equal to hash without it (%q)", withReceived, withoutReceived)
	}
}

func TestComputeHeadersHashStableForSameInput(t *testing.T) {
	build := func() *header.Table {
		table := header.NewTable()
		table.Insert(&header.Header{Name: "from", Order: 0})
		table.Insert(&header.Header{Name: "subject", Order: 1})
		return table
	}
	if ComputeHeadersHash(build()) != ComputeHeadersHash(build()) {
		t.Error("ComputeHeadersHash is not stable across equivalent tables")
	}
}

func TestComputeHeadersHashSkipsEmptyName(t *testing.T) {
	table := header.NewTable()
	table.Insert(&header.Header{Name: "", Order: 0})
	emptyOnly := ComputeHeadersHash(table)

	if emptyOnly != NewFinalizer().Finalize() {
		t.Error("a table with only an empty-name header should hash the same as an empty Finalizer")
	}
}
