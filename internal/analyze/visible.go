package analyze

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	currencyAmountRe = regexp.MustCompile(`(\d[\d\s,.]{2,})\s*\$`)
	saleAnchor       = "à vendre"
)

// visibleTextStrategy is the last-resort source: the document reduced to
// its rendered text lines. Price comes from the share-description metas,
// then a bounded window after the first "à vendre" line (all plausible
// figures collected, largest wins; the asking price is the most
// prominently repeated figure near the anchor), then a fixed prefix of
// the document. Tabular fields come from label/value line pairs; when a
// label appears with both monthly and annual figures the maximum is
// kept, a documented heuristic risk.
type visibleTextStrategy struct {
	cfg Config
}

func (visibleTextStrategy) Name() string { return string(SourceVisibleText) }

func (s visibleTextStrategy) Extract(doc *Document) []Candidate {
	var out []Candidate
	if c, ok := s.priceFromMeta(doc); ok {
		out = append(out, c)
	} else if c, ok := s.priceFromLines(doc.TextLines()); ok {
		out = append(out, c)
	}
	out = append(out, s.labelledAmounts(doc.TextLines())...)
	if c, ok := s.propertyType(doc.TextLines()); ok {
		out = append(out, c)
	}
	return out
}

func (s visibleTextStrategy) priceFromMeta(doc *Document) (Candidate, bool) {
	for _, key := range []string{"og:description", "twitter:description", "description"} {
		content := doc.Meta(key)
		if content == "" {
			continue
		}
		if m := currencyAmountRe.FindString(content); m != "" {
			if n, ok := ParseMoney(m); ok {
				return Candidate{
					Field:   FieldPrice,
					Source:  SourceVisibleText,
					Locator: "meta:" + key,
					Raw:     m,
					Num:     &n,
				}, true
			}
		}
	}
	return Candidate{}, false
}

func (s visibleTextStrategy) priceFromLines(lines []string) (Candidate, bool) {
	anchor := -1
	limit := min(s.cfg.AnchorScanLines, len(lines))
	for i := 0; i < limit; i++ {
		if strings.Contains(strings.ToLower(lines[i]), saleAnchor) {
			anchor = i
			break
		}
	}

	if anchor >= 0 {
		end := min(anchor+s.cfg.AnchorWindowLines, len(lines))
		best := int64(0)
		bestRaw := ""
		for _, ln := range lines[anchor:end] {
			for _, m := range currencyAmountRe.FindAllString(ln, -1) {
				n, ok := ParseMoney(m)
				if ok && n > best {
					best = n
					bestRaw = m
				}
			}
		}
		if best > 0 {
			return Candidate{
				Field:   FieldPrice,
				Source:  SourceVisibleText,
				Locator: fmt.Sprintf("anchor-window:%d+%d", anchor, s.cfg.AnchorWindowLines),
				Raw:     bestRaw,
				Num:     &best,
			}, true
		}
	}

	// No anchor (or nothing in the window): first figure in the prefix.
	end := min(s.cfg.PrefixFallbackLines, len(lines))
	for i := 0; i < end; i++ {
		if m := currencyAmountRe.FindString(lines[i]); m != "" {
			if n, ok := ParseMoney(m); ok {
				return Candidate{
					Field:   FieldPrice,
					Source:  SourceVisibleText,
					Locator: fmt.Sprintf("prefix:%d", i),
					Raw:     m,
					Num:     &n,
				}, true
			}
		}
	}
	return Candidate{}, false
}

// financial line labels as rendered in tabular layouts
var amountLabels = []struct {
	field  Field
	labels []string
}{
	{FieldGrossRevenue, []string{"revenus bruts potentiels", "revenu brut potentiel"}},
	{FieldMunicipalTax, []string{"taxes municipales", "municipales"}},
	{FieldSchoolTax, []string{"taxes scolaires", "scolaires"}},
}

// labelledAmounts scans for "label line" / "value line" pairs. A site
// may render both a monthly and an annual figure under one label; every
// hit is collected and the maximum kept as the annual figure.
func (s visibleTextStrategy) labelledAmounts(lines []string) []Candidate {
	var out []Candidate
	for _, spec := range amountLabels {
		best := int64(0)
		bestRaw, bestLoc := "", ""
		for i, ln := range lines {
			ll := strings.ToLower(ln)
			matched, at := "", -1
			for _, label := range spec.labels {
				if idx := strings.Index(ll, label); idx >= 0 {
					matched, at = label, idx
					break
				}
			}
			if matched == "" {
				continue
			}
			value := ln[at+len(matched):]
			if m := currencyAmountRe.FindString(value); m != "" {
				// same-line rendering ("Municipales 3 120 $")
				if n, ok := ParseMoney(m); ok && n > best {
					best, bestRaw, bestLoc = n, m, fmt.Sprintf("label:%s@%d", matched, i)
				}
				continue
			}
			if i+1 < len(lines) {
				if m := currencyAmountRe.FindString(lines[i+1]); m != "" {
					if n, ok := ParseMoney(m); ok && n > best {
						best, bestRaw, bestLoc = n, m, fmt.Sprintf("label:%s@%d", matched, i)
					}
				}
			}
		}
		if best > 0 {
			n := best
			out = append(out, Candidate{
				Field:   spec.field,
				Source:  SourceVisibleText,
				Locator: bestLoc,
				Raw:     bestRaw,
				Num:     &n,
			})
		}
	}
	return out
}

var plexTypes = []string{"Quadruplex", "Triplex", "Duplex"}

func (s visibleTextStrategy) propertyType(lines []string) (Candidate, bool) {
	end := min(40, len(lines))
	head := strings.ToLower(strings.Join(lines[:end], " "))
	for _, tp := range plexTypes {
		if strings.Contains(head, strings.ToLower(tp)) {
			return Candidate{
				Field:   FieldPropertyType,
				Source:  SourceVisibleText,
				Locator: "head",
				Raw:     tp,
				Text:    tp,
			}, true
		}
	}
	return Candidate{}, false
}
