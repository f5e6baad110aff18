package analyze

import (
	"encoding/json"
	"strings"
)

// pickedMode records how the embedded-state strategy chose its node.
type pickedMode string

const (
	pickedByID    pickedMode = "by_id"
	pickedByScore pickedMode = "best_score"
	pickedNone    pickedMode = "none"
)

// embeddedStateStrategy parses the page's hydration payload and mines it
// for every target field. A malformed or absent payload makes the
// strategy unavailable, not an error. Listing selection prefers an exact
// match on the resolved listing identifier; otherwise every dict-like
// node is scored by financially salient keys and the best node must
// clear the configured threshold before any field is trusted.
type embeddedStateStrategy struct {
	cfg Config

	// listingID is the canonical identifier resolved before the
	// strategies run (document first, caller's URL hint second); it
	// drives the exact-match node lookup.
	listingID string

	// filled during Extract for the debug trail
	lastMode  pickedMode
	lastScore int
}

func (embeddedStateStrategy) Name() string { return string(SourceEmbeddedState) }

func (s *embeddedStateStrategy) Extract(doc *Document) []Candidate {
	s.lastMode, s.lastScore = pickedNone, 0

	raw := doc.StatePayload(s.cfg.MinPayloadBytes)
	if raw == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	var node any
	if hit := findNodeByID(payload, s.listingID); hit != nil {
		node = hit
		s.lastMode = pickedByID
	} else {
		best, score := findBestNode(payload)
		s.lastScore = score
		if best != nil && score >= s.cfg.MinListingScore {
			node = best
			s.lastMode = pickedByScore
		} else {
			// Selection failed; fall back to the whole payload so the
			// exclusion rules alone stand between us and false positives.
			node = payload
		}
	}

	var out []Candidate
	out = append(out, s.numberCandidates(node)...)
	out = append(out, s.stringCandidates(node)...)
	out = append(out, s.unitCandidates(node)...)
	out = append(out, s.areaCandidates(node)...)
	return out
}

// numberCandidates covers price, revenue and both tax fields. The price
// rule excludes per-unit, fee and tax keys so "pricePerUnit" or
// "priceAssessment" never masquerade as the listing price.
func (s *embeddedStateStrategy) numberCandidates(node any) []Candidate {
	var out []Candidate

	if hit, ok := findNumber(node, keyRule{
		include: []string{"price", "prix"},
		exclude: []string{"tax", "fee", "unit", "maintenance", "assessment", "rent"},
		min:     1, max: 0,
	}); ok {
		out = append(out, embeddedCandidate(FieldPrice, hit))
	}

	if hit, ok := findNumber(node, keyRule{
		include: []string{"grosspotentialrevenue", "revenusbrutspotentiels", "grossrevenue", "potentialrevenue"},
		min:     1,
	}); ok {
		c := embeddedCandidate(FieldGrossRevenue, hit)
		// Some sources render abbreviated thousands ("27.5" for 27 500).
		if hit.num < s.cfg.RevenueCorrectionBound {
			scaled := hit.num * 1000
			c.Num = &scaled
			c.Correction = "revenue scaled x1000 (abbreviated thousands)"
		}
		out = append(out, c)
	}

	if hit, ok := findNumber(node, keyRule{
		include: []string{"taxes.municipal", "municipaltax", "taxesmunicipales"},
		min:     1,
	}); ok {
		out = append(out, embeddedCandidate(FieldMunicipalTax, hit))
	}
	if hit, ok := findNumber(node, keyRule{
		include: []string{"taxes.school", "taxes.scolaire", "schooltax", "taxesscolaires"},
		min:     1,
	}); ok {
		out = append(out, embeddedCandidate(FieldSchoolTax, hit))
	}

	if hit, ok := findNumber(node, keyRule{
		include: []string{"floors", "numberoffloors", "nbetages"},
		exclude: []string{"area"},
		min:     1, max: 200,
	}); ok {
		out = append(out, embeddedCandidate(FieldFloors, hit))
	}
	return out
}

func (s *embeddedStateStrategy) stringCandidates(node any) []Candidate {
	var out []Candidate
	specs := []struct {
		field   Field
		include []string
		exclude []string
	}{
		{FieldCity, []string{"location.city", "address.city", "municipality"}, nil},
		{FieldDistrict, []string{"borough", "location.district", "address.district", "location.area"}, nil},
		{FieldPropertyType, []string{"propertytype", "typepropriete", "buildingtype"}, []string{"id", "code"}},
	}
	for _, spec := range specs {
		if path, val, ok := findString(node, spec.include, spec.exclude); ok {
			out = append(out, Candidate{
				Field:   spec.field,
				Source:  SourceEmbeddedState,
				Locator: path,
				Raw:     val,
				Text:    val,
			})
		}
	}
	return out
}

// unitCandidates mirrors the source data's two unit shapes: a units
// object carrying total (or residential+commercial), or a flat count.
func (s *embeddedStateStrategy) unitCandidates(node any) []Candidate {
	if hit, ok := findNumber(node, keyRule{
		include: []string{"units.total"},
		min:     1, max: 500,
	}); ok {
		return []Candidate{embeddedCandidate(FieldUnits, hit)}
	}

	res, okRes := findNumber(node, keyRule{include: []string{"units.residential", "units.residentiel"}, min: 0, max: 500})
	com, okCom := findNumber(node, keyRule{include: []string{"units.commercial"}, min: 0, max: 500})
	if okRes || okCom {
		total := walkHit{path: "units", num: res.num + com.num, raw: strings.TrimSpace(res.raw + "+" + com.raw)}
		return []Candidate{embeddedCandidate(FieldUnits, total)}
	}

	if hit, ok := findNumber(node, keyRule{
		include: []string{"numberofunits", "nblogements", "unitcount"},
		min:     1, max: 500,
	}); ok {
		return []Candidate{embeddedCandidate(FieldUnits, hit)}
	}
	return nil
}

func (s *embeddedStateStrategy) areaCandidates(node any) []Candidate {
	var out []Candidate

	living, okLiving := findNumber(node, keyRule{
		include: []string{"livingarea", "habitablearea"},
		min:     1,
	})
	if okLiving {
		out = append(out, embeddedCandidate(FieldLivingArea, living))
	}
	commercial, okCom := findNumber(node, keyRule{
		include: []string{"commercialarea", "commercialavailablearea"},
		min:     1,
	})
	if okCom {
		out = append(out, embeddedCandidate(FieldCommercialArea, commercial))
	}
	if okLiving || okCom {
		total := walkHit{path: "building", num: living.num + commercial.num, raw: "derived"}
		out = append(out, embeddedCandidate(FieldTotalArea, total))
	}
	if hit, ok := findNumber(node, keyRule{
		include: []string{"lot.landarea", "landarea", "lot.area"},
		min:     1,
	}); ok {
		out = append(out, embeddedCandidate(FieldLotArea, hit))
	}
	return out
}

func embeddedCandidate(field Field, hit walkHit) Candidate {
	n := hit.num
	return Candidate{
		Field:   field,
		Source:  SourceEmbeddedState,
		Locator: hit.path,
		Raw:     hit.raw,
		Num:     &n,
	}
}
