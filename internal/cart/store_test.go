package cart

import (
	"sync"
	"testing"

	"github.com/quickkart/storefront-gateway/internal/catalog"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	"github.com/quickkart/storefront-gateway/pkg/money"
)

func paisePtr(v money.Paise) *money.Paise {
	return &v
}

func product(id string, price money.Paise) catalog.Product {
	return catalog.Product{ID: id, Name: "product " + id, AssignedPrice: paisePtr(price)}
}

func TestAddTwiceAccumulatesQuantity(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AddOrIncrement(product("p1", 100)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := store.AddOrIncrement(product("p1", 100)); err != nil {
		t.Fatalf("second add: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(snap.Lines))
	}
	if snap.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", snap.Lines[0].Quantity)
	}
	if snap.Total != 200 {
		t.Fatalf("expected total 200, got %d", snap.Total)
	}
}

func TestDecrementToEmptyThenNoOp(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AddOrIncrement(product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}

	store.DecrementOrRemove("p1")
	store.DecrementOrRemove("p1") // already gone, must be a no-op

	snap := store.Snapshot()
	if !snap.Empty() || snap.Total != 0 {
		t.Fatalf("expected empty cart with zero total, got %+v", snap)
	}
}

func TestDecrementAbsentProductIsNoOp(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.DecrementOrRemove("ghost")
	if snap := store.Snapshot(); !snap.Empty() {
		t.Fatalf("expected empty cart, got %+v", snap)
	}
}

func TestUnresolvablePriceRejectsLine(t *testing.T) {
	t.Parallel()

	store := NewStore()
	err := store.AddOrIncrement(catalog.Product{ID: "p1", Name: "no price"})
	if !pkgerrors.IsCode(err, pkgerrors.CodePriceUnavailable) {
		t.Fatalf("expected PRICE_UNAVAILABLE, got %v", err)
	}
	if snap := store.Snapshot(); !snap.Empty() {
		t.Fatalf("rejected product must not be stored, got %+v", snap)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	t.Parallel()

	store := NewStore()
	for _, p := range []catalog.Product{product("a", 100), product("b", 200), product("c", 300)} {
		if err := store.AddOrIncrement(p); err != nil {
			t.Fatalf("add %s: %v", p.ID, err)
		}
	}
	store.Remove("b")
	if err := store.AddOrIncrement(product("b", 200)); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	snap := store.Snapshot()
	got := []string{}
	for _, line := range snap.Lines {
		got = append(got, line.ProductID)
	}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AddOrIncrement(product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.Remove("p1")
	store.Remove("p1")
	if snap := store.Snapshot(); !snap.Empty() {
		t.Fatalf("expected empty cart, got %+v", snap)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if err := store.AddOrIncrement(product("p1", 100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddOrIncrement(product("p2", 250)); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.Clear()
	if snap := store.Snapshot(); !snap.Empty() || snap.Total != 0 {
		t.Fatalf("expected cleared cart, got %+v", snap)
	}
}

func TestTotalMatchesLineSum(t *testing.T) {
	t.Parallel()

	store := NewStore()
	for i := 0; i < 3; i++ {
		if err := store.AddOrIncrement(product("p1", 9999)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := store.AddOrIncrement(product("p2", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap := store.Snapshot()
	var sum money.Paise
	for _, line := range snap.Lines {
		sum += line.UnitPrice.Mul(line.Quantity)
	}
	if snap.Total != sum {
		t.Fatalf("total %d does not equal line sum %d", snap.Total, sum)
	}
	if snap.Total != 3*9999+1 {
		t.Fatalf("unexpected total %d", snap.Total)
	}
}

func TestConcurrentMutationsStayConsistent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.AddOrIncrement(product("p1", 100))
		}()
		go func() {
			defer wg.Done()
			store.DecrementOrRemove("p1")
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	for _, line := range snap.Lines {
		if line.Quantity < 1 {
			t.Fatalf("stored quantity below 1: %+v", line)
		}
	}
}
