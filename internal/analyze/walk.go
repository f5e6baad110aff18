package analyze

import (
	"fmt"
	"sort"
	"strings"
)

// keyRule parameterizes the generic tree search: a key path matches when
// its lowercased joined form contains at least one include keyword and
// none of the exclude keywords, and the value at that path parses into
// the plausible numeric range. The same walker serves every numeric
// field, which keeps traversal logic in one place.
type keyRule struct {
	include []string
	exclude []string
	min     int64
	max     int64
}

type walkHit struct {
	path string
	num  int64
	raw  string
}

// findNumber runs a deterministic depth-first search (map keys visited
// in sorted order) and returns the first value matching the rule.
func findNumber(node any, rule keyRule) (walkHit, bool) {
	var found walkHit
	ok := walk(node, "", func(path string, value any) bool {
		lp := strings.ToLower(path)
		if !containsAny(lp, rule.include) || containsAny(lp, rule.exclude) {
			return false
		}
		n, raw, parsed := scalarToInt(value)
		if !parsed || n < rule.min || (rule.max > 0 && n > rule.max) {
			return false
		}
		found = walkHit{path: path, num: n, raw: raw}
		return true
	})
	return found, ok
}

// findString is the string-valued counterpart of findNumber.
func findString(node any, include, exclude []string) (string, string, bool) {
	var path, val string
	ok := walk(node, "", func(p string, value any) bool {
		lp := strings.ToLower(p)
		if !containsAny(lp, include) || containsAny(lp, exclude) {
			return false
		}
		s, isStr := value.(string)
		s = strings.TrimSpace(s)
		if !isStr || s == "" {
			return false
		}
		path, val = p, s
		return true
	})
	return path, val, ok
}

// walk visits every scalar in the tree depth-first, maps before slices,
// map keys sorted, and stops when visit returns true. The stable order
// makes extraction reproducible for identical documents.
func walk(node any, path string, visit func(path string, value any) bool) bool {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if path != "" {
				child = path + "." + k
			}
			if walk(v[k], child, visit) {
				return true
			}
		}
	case []any:
		for i, item := range v {
			if walk(item, fmt.Sprintf("%s[%d]", path, i), visit) {
				return true
			}
		}
	default:
		return visit(path, v)
	}
	return false
}

// scalarToInt accepts the numeric shapes JSON decoding produces plus
// numeric strings, via the normalizer.
func scalarToInt(value any) (int64, string, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), fmt.Sprintf("%v", v), true
	case int64:
		return v, fmt.Sprintf("%d", v), true
	case string:
		n, ok := ParseMoney(v)
		return n, v, ok
	case bool, nil:
		return 0, "", false
	default:
		return 0, "", false
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// --- listing node selection ---

// listingSignalKeys is the vocabulary of financially salient keys used
// to score listing-like nodes inside a hydration payload.
var listingSignalKeys = map[string]struct{}{
	"taxes": {}, "municipal": {}, "school": {}, "price": {}, "prix": {},
	"grosspotentialrevenue": {}, "revenusbrutspotentiels": {},
	"address": {}, "city": {}, "municipality": {}, "borough": {}, "district": {}, "area": {},
	"units": {}, "numberofunits": {}, "unitcount": {},
	"building": {}, "lot": {}, "landarea": {},
	"id": {}, "listingid": {}, "centrisid": {}, "mlsnumber": {}, "propertyid": {},
}

var listingIDKeys = map[string]struct{}{
	"id": {}, "listingid": {}, "centrisid": {}, "propertyid": {},
	"mlsnumber": {}, "number": {}, "reference": {},
}

// scoreListingNode counts signal-key hits (capped) and adds extra weight
// for the most decisive keys. Non-dict nodes score below any dict.
func scoreListingNode(obj map[string]any) int {
	keys := map[string]struct{}{}
	for k := range obj {
		keys[strings.ToLower(k)] = struct{}{}
	}
	hits := 0
	for k := range keys {
		if _, ok := listingSignalKeys[k]; ok {
			hits++
		}
	}
	score := hits
	if score > 12 {
		score = 12
	}
	if _, ok := keys["taxes"]; ok {
		score += 6
	}
	if hasEither(keys, "price", "prix") {
		score += 6
	}
	if hasEither(keys, "grosspotentialrevenue", "revenusbrutspotentiels") {
		score += 6
	}
	if _, ok := keys["address"]; ok {
		score += 3
	}
	if hasEither(keys, "units", "numberofunits") {
		score += 3
	}
	return score
}

func hasEither(keys map[string]struct{}, a, b string) bool {
	_, okA := keys[a]
	_, okB := keys[b]
	return okA || okB
}

// findNodeByID searches the payload for a dict whose own id-like field
// equals the external identifier; an exact match wins outright.
func findNodeByID(node any, id string) map[string]any {
	if id == "" {
		return nil
	}
	var found map[string]any
	var search func(any) bool
	search = func(n any) bool {
		switch v := n.(type) {
		case map[string]any:
			if nodeHasID(v, id) {
				found = v
				return true
			}
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if search(v[k]) {
					return true
				}
			}
		case []any:
			for _, item := range v {
				if search(item) {
					return true
				}
			}
		}
		return false
	}
	search(node)
	return found
}

func nodeHasID(obj map[string]any, id string) bool {
	for k, v := range obj {
		if _, ok := listingIDKeys[strings.ToLower(k)]; !ok {
			continue
		}
		if strings.TrimSpace(fmt.Sprintf("%v", v)) == id {
			return true
		}
		// JSON numbers decode as float64; 22469257 renders as 2.2469257e+07.
		if f, isF := v.(float64); isF && fmt.Sprintf("%.0f", f) == id {
			return true
		}
	}
	return false
}

// findBestNode scores every dict in the payload and returns the highest
// scorer with its score. Ties resolve to the first node in traversal
// order, which is stable.
func findBestNode(node any) (map[string]any, int) {
	var best map[string]any
	bestScore := -1 << 30
	var search func(any)
	search = func(n any) {
		switch v := n.(type) {
		case map[string]any:
			if sc := scoreListingNode(v); sc > bestScore {
				bestScore = sc
				best = v
			}
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				search(v[k])
			}
		case []any:
			for _, item := range v {
				search(item)
			}
		}
	}
	search(node)
	return best, bestScore
}
