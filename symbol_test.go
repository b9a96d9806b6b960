package odd

import (
	"sync"
	"testing"
)

func TestIntern(t *testing.T) {
	a := Intern("symbol_test_a")
	b := Intern("symbol_test_b")

	if a == b {
		t.Error("distinct names should intern to distinct symbols")
	}
	if Intern("symbol_test_a") != a {
		t.Error("equal names should intern to the same symbol")
	}
	if a.String() != "symbol_test_a" {
		t.Errorf("String() = %q, want symbol_test_a", a.String())
	}
	if !a.Valid() || !b.Valid() {
		t.Error("interned symbols should be valid")
	}
}

func TestSymbol_Invalid(t *testing.T) {
	var zero Symbol
	if zero.Valid() {
		t.Error("zero symbol should be invalid")
	}
	if zero.String() != "" {
		t.Errorf("zero.String() = %q, want empty", zero.String())
	}

	unissued := Symbol(1 << 31)
	if unissued.Valid() {
		t.Error("un-issued symbol should be invalid")
	}
	if unissued.String() != "" {
		t.Errorf("String() = %q, want empty", unissued.String())
	}
}

func TestLookupSymbol(t *testing.T) {
	if _, ok := LookupSymbol("symbol_test_never_interned"); ok {
		t.Error("LookupSymbol should not intern")
	}
	if _, ok := LookupSymbol("symbol_test_never_interned"); ok {
		t.Error("LookupSymbol should not intern on a second call either")
	}

	s := Intern("symbol_test_lookup")
	got, ok := LookupSymbol("symbol_test_lookup")
	if !ok || got != s {
		t.Errorf("LookupSymbol() = %v, %v; want %v, true", got, ok, s)
	}
}

func TestIntern_Concurrent(t *testing.T) {
	const workers = 8
	results := make([]Symbol, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Intern("symbol_test_concurrent")
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		if s != results[0] {
			t.Errorf("worker %d got %v, want %v", i, s, results[0])
		}
	}
}
