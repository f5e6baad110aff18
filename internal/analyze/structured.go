package analyze

import (
	"encoding/json"
	"fmt"
)

// structuredStrategy reads self-describing offer blocks: schema.org
// ld+json scripts (offers.price, possibly a list of offers) and
// price-bearing meta tags. It only ever proposes a price; purpose-built
// machine-readable data earns the highest precedence, but tiny values
// in offer blocks are never property prices, hence the sanity floor.
type structuredStrategy struct {
	cfg Config
}

func (structuredStrategy) Name() string { return string(SourceStructured) }

func (s structuredStrategy) Extract(doc *Document) []Candidate {
	for _, block := range doc.JSONLDBlocks() {
		var payload any
		if err := json.Unmarshal([]byte(block), &payload); err != nil {
			continue
		}
		if hit, ok := findNumber(payload, keyRule{
			include: []string{"offers.price", "offers[" /* offer lists */},
			min:     s.cfg.MinStructuredPrice,
		}); ok && containsAny(hit.path, []string{"price"}) {
			n := hit.num
			return []Candidate{{
				Field:   FieldPrice,
				Source:  SourceStructured,
				Locator: "ld+json:" + hit.path,
				Raw:     hit.raw,
				Num:     &n,
			}}
		}
	}

	for _, key := range []string{"product:price:amount", "og:price:amount", "price"} {
		content := doc.Meta(key)
		if content == "" {
			continue
		}
		n, ok := ParseMoney(content)
		if !ok || n < s.cfg.MinStructuredPrice {
			continue
		}
		return []Candidate{{
			Field:   FieldPrice,
			Source:  SourceStructured,
			Locator: fmt.Sprintf("meta:%s", key),
			Raw:     content,
			Num:     &n,
		}}
	}
	return nil
}
