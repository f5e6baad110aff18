package llmextract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Fields is the subset of listing fields the model is asked to read off
// of the visible text. Nil means the text did not state the figure.
// These suggestions never enter the deterministic pipeline; they exist
// for side-by-side review when every strategy came up empty.
type Fields struct {
	Prix                      *int64 `json:"prix"`
	NbLogements               *int64 `json:"nb_logements"`
	RevenuBrutPotentielAnnuel *int64 `json:"revenu_brut_potentiel_annuel"`
	TaxesMunicipales          *int64 `json:"taxes_municipales"`
	TaxesScolaires            *int64 `json:"taxes_scolaires"`
	Ville                     string `json:"ville"`
	Quartier                  string `json:"quartier"`
	TypePropriete             string `json:"type_propriete"`
}

const maxPromptChars = 24_000

type Extractor struct {
	caller LLMCaller
}

func NewExtractor(caller LLMCaller) *Extractor {
	return &Extractor{caller: caller}
}

// Extract asks the model for the listing fields present in the visible
// text. Transient transport failures and malformed responses are
// retried up to three times.
func (e *Extractor) Extract(ctx context.Context, visibleText string) (Fields, error) {
	if len(visibleText) > maxPromptChars {
		visibleText = visibleText[:maxPromptChars]
	}
	prompt := "Listing text:\n\n" + visibleText + "\n\n" +
		`Return JSON with keys: prix, nb_logements, revenu_brut_potentiel_annuel, ` +
		`taxes_municipales, taxes_scolaires (integers or null), ville, quartier, ` +
		`type_propriete (strings, "" when absent). Amounts in whole dollars, annual figures.`

	var out Fields
	feedback := ""
	for attempt := 1; attempt <= 3; attempt++ {
		fullPrompt := prompt
		if feedback != "" {
			fullPrompt += "\n\n" + feedback
		}

		raw, err := e.caller.GenerateJSON(ctx, fullPrompt)
		if err != nil {
			class := classifyTransportError(err)
			if class == failureTimeout || class == failureRateLimit || class == failureServer {
				if attempt < 3 {
					time.Sleep(backoffDelay(attempt))
					continue
				}
			}
			return Fields{}, fmt.Errorf("llm extract transport failure: %w", err)
		}

		raw = strings.TrimSpace(raw)
		if raw == "" {
			if attempt < 3 {
				feedback = "Your previous response was empty. Respond with valid JSON."
				continue
			}
			return Fields{}, fmt.Errorf("llm extract failed: empty response")
		}

		out = Fields{}
		if err := json.Unmarshal([]byte(stripCodeFences(raw)), &out); err != nil {
			if attempt < 3 {
				feedback = "Your previous response was not valid JSON. Respond with only valid JSON."
				continue
			}
			return Fields{}, fmt.Errorf("llm extract failed json parse: %w", err)
		}
		if err := validate(out); err != nil {
			if attempt < 3 {
				feedback = fmt.Sprintf("Your response failed validation: %s. Fix these issues.", err)
				continue
			}
			return Fields{}, fmt.Errorf("llm extract failed validation: %w", err)
		}
		return out, nil
	}
	return Fields{}, fmt.Errorf("llm extract failed after retries")
}

func validate(f Fields) error {
	for name, v := range map[string]*int64{
		"prix":                         f.Prix,
		"nb_logements":                 f.NbLogements,
		"revenu_brut_potentiel_annuel": f.RevenuBrutPotentielAnnuel,
		"taxes_municipales":            f.TaxesMunicipales,
		"taxes_scolaires":              f.TaxesScolaires,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s is negative", name)
		}
	}
	return nil
}
