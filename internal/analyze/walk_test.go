package analyze

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestFindNumberHonorsExcludes(t *testing.T) {
	payload := decode(t, `{"pricePerUnit": 125000, "price": 450000}`)
	hit, ok := findNumber(payload, keyRule{
		include: []string{"price"},
		exclude: []string{"unit"},
		min:     1,
	})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.num != 450000 || hit.path != "price" {
		t.Fatalf("got %d at %q, want 450000 at price", hit.num, hit.path)
	}
}

func TestFindNumberDeterministicKeyOrder(t *testing.T) {
	payload := decode(t, `{"zPrice": 100000, "aPrice": 200000}`)
	for i := 0; i < 20; i++ {
		hit, ok := findNumber(payload, keyRule{include: []string{"price"}, min: 1})
		if !ok || hit.path != "aPrice" {
			t.Fatalf("iteration %d: got %q, want aPrice (sorted order)", i, hit.path)
		}
	}
}

func TestFindNumberParsesNumericStrings(t *testing.T) {
	payload := decode(t, `{"taxes": {"municipal": "3 120,00 $"}}`)
	hit, ok := findNumber(payload, keyRule{include: []string{"taxes.municipal"}, min: 1})
	if !ok || hit.num != 3120 {
		t.Fatalf("got %d ok=%v, want 3120", hit.num, ok)
	}
}

func TestScoreListingNode(t *testing.T) {
	node := map[string]any{
		"taxes":   map[string]any{"municipal": 3120.0},
		"price":   450000.0,
		"address": "123 rue Exemple",
		"units":   map[string]any{"total": 4.0},
	}
	// 4 signal hits + 6 (taxes) + 6 (price) + 3 (address) + 3 (units)
	if got := scoreListingNode(node); got != 22 {
		t.Fatalf("score = %d, want 22", got)
	}
	if got := scoreListingNode(map[string]any{"foo": 1.0}); got != 0 {
		t.Fatalf("score = %d, want 0 for unrelated node", got)
	}
}

func TestFindNodeByIDMatchesNumericID(t *testing.T) {
	payload := decode(t, `{"results": [{"centrisId": 22469257, "price": 908000}, {"centrisId": 11111111}]}`)
	node := findNodeByID(payload, "22469257")
	if node == nil {
		t.Fatal("expected id match on float64-decoded id")
	}
	if node["price"] != 908000.0 {
		t.Fatalf("wrong node matched: %v", node)
	}
	if findNodeByID(payload, "99999999") != nil {
		t.Fatal("expected no match for unknown id")
	}
}

func TestFindBestNodePrefersSalientDict(t *testing.T) {
	payload := decode(t, `{
		"translations": {"fr": {"label": "Prix"}},
		"listing": {"price": 450000, "taxes": {"municipal": 3120}, "address": "x", "units": 4}
	}`)
	best, score := findBestNode(payload)
	if best == nil || score < 8 {
		t.Fatalf("best score = %d, want >= 8", score)
	}
	if best["price"] != 450000.0 {
		t.Fatalf("wrong best node: %v", best)
	}
}
