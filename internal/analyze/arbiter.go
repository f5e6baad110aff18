package analyze

import (
	"fmt"
	"strconv"
)

// arbiter merges candidates from all strategies under the fixed
// precedence structured → embedded-state → visible-text. Per field, the
// first candidate passing that field's plausibility filter wins; when
// none survives the field stays unresolved, the arbiter never guesses.
// All accept/reject reasoning lands in the trace.
type arbiter struct {
	cfg Config
}

// numericBounds is the per-field plausibility range applied before a
// numeric candidate may win. Zero max means unbounded above.
var numericBounds = map[Field]struct{ min, max int64 }{
	FieldPrice:          {1, 0}, // ceiling and GRM handled separately
	FieldUnits:          {1, 500},
	FieldGrossRevenue:   {1, 0},
	FieldMunicipalTax:   {1, 1_000_000},
	FieldSchoolTax:      {1, 1_000_000},
	FieldFloors:         {1, 200},
	FieldLivingArea:     {1, 10_000_000},
	FieldCommercialArea: {1, 10_000_000},
	FieldTotalArea:      {1, 10_000_000},
	FieldLotArea:        {1, 10_000_000},
}

// resolve walks candidates grouped in strategy order and produces the
// final record plus the provenance trace. The gross revenue resolves
// before the price so the gross-rent-multiplier check can use it.
func (a arbiter) resolve(groups [][]Candidate) (Record, Trace) {
	trace := Trace{
		Resolved: map[Field]Resolution{},
		Rejected: map[Field][]Rejection{},
	}
	byField := map[Field][]Candidate{}
	for _, group := range groups {
		for _, c := range group {
			byField[c.Field] = append(byField[c.Field], c)
		}
	}

	var rec Record
	rec.GrossRevenue = a.resolveNumeric(FieldGrossRevenue, byField, &trace, nil)
	rec.Price = a.resolveNumeric(FieldPrice, byField, &trace, rec.GrossRevenue)
	rec.Units = a.resolveNumeric(FieldUnits, byField, &trace, nil)
	rec.MunicipalTax = a.resolveNumeric(FieldMunicipalTax, byField, &trace, nil)
	rec.SchoolTax = a.resolveNumeric(FieldSchoolTax, byField, &trace, nil)
	rec.Floors = a.resolveNumeric(FieldFloors, byField, &trace, nil)
	rec.LivingArea = a.resolveNumeric(FieldLivingArea, byField, &trace, nil)
	rec.CommercialArea = a.resolveNumeric(FieldCommercialArea, byField, &trace, nil)
	rec.TotalArea = a.resolveNumeric(FieldTotalArea, byField, &trace, nil)
	rec.LotArea = a.resolveNumeric(FieldLotArea, byField, &trace, nil)
	rec.City = a.resolveText(FieldCity, byField, &trace)
	rec.District = a.resolveText(FieldDistrict, byField, &trace)
	rec.PropertyType = a.resolveText(FieldPropertyType, byField, &trace)

	if rec.TotalArea == nil && (rec.LivingArea != nil || rec.CommercialArea != nil) {
		total := valueOr(rec.LivingArea, 0) + valueOr(rec.CommercialArea, 0)
		rec.TotalArea = &total
		from, ok := trace.Resolved[FieldLivingArea]
		if !ok {
			from = trace.Resolved[FieldCommercialArea]
		}
		trace.Resolved[FieldTotalArea] = Resolution{
			Field:   FieldTotalArea,
			Source:  from.Source,
			Locator: "derived:living+commercial",
		}
	}
	return rec, trace
}

func (a arbiter) resolveNumeric(field Field, byField map[Field][]Candidate, trace *Trace, revenue *int64) *int64 {
	for _, c := range byField[field] {
		if c.Num == nil {
			continue
		}
		if reason, ok := a.check(field, *c.Num, revenue); !ok {
			trace.Rejected[field] = append(trace.Rejected[field], Rejection{
				Source: c.Source,
				Value:  strconv.FormatInt(*c.Num, 10),
				Reason: reason,
			})
			continue
		}
		a.recordWin(field, c, trace)
		v := *c.Num
		return &v
	}
	return nil
}

func (a arbiter) resolveText(field Field, byField map[Field][]Candidate, trace *Trace) string {
	for _, c := range byField[field] {
		if c.Text == "" {
			continue
		}
		a.recordWin(field, c, trace)
		return c.Text
	}
	return ""
}

func (a arbiter) recordWin(field Field, c Candidate, trace *Trace) {
	trace.Resolved[field] = Resolution{
		Field:    field,
		Source:   c.Source,
		Locator:  c.Locator,
		Raw:      c.Raw,
		Rejected: trace.Rejected[field],
	}
}

// check applies the plausibility filter for one field. Price carries two
// extra rules: the extreme ceiling, and the gross-rent-multiplier test
// against a known revenue (a GRM above the limit signals a misparsed
// figure such as a municipal evaluation).
func (a arbiter) check(field Field, v int64, revenue *int64) (string, bool) {
	bounds, ok := numericBounds[field]
	if ok {
		if v < bounds.min {
			return fmt.Sprintf("below minimum %d", bounds.min), false
		}
		if bounds.max > 0 && v > bounds.max {
			return fmt.Sprintf("above maximum %d", bounds.max), false
		}
	}
	if field == FieldPrice {
		if v >= a.cfg.PriceCeiling {
			return fmt.Sprintf("price %d at or above ceiling %d", v, a.cfg.PriceCeiling), false
		}
		if revenue != nil && *revenue > 0 {
			ratio := float64(v) / float64(*revenue)
			if ratio > a.cfg.MaxGrossRentMultiplier {
				return fmt.Sprintf("gross rent multiplier %.1f exceeds %.0f", ratio, a.cfg.MaxGrossRentMultiplier), false
			}
		}
	}
	return "", true
}

func valueOr(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}
