package llmextract

import (
	"context"
	"fmt"
	"testing"
)

type fakeCaller struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", fmt.Errorf("no scripted response")
}

func TestExtractParsesFencedJSON(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		"```json\n{\"prix\": 908000, \"nb_logements\": 2, \"ville\": \"Montréal\"}\n```",
	}}
	f, err := NewExtractor(caller).Extract(context.Background(), "Duplex à vendre 908 000 $")
	if err != nil {
		t.Fatal(err)
	}
	if f.Prix == nil || *f.Prix != 908000 {
		t.Fatalf("prix = %v", f.Prix)
	}
	if f.Ville != "Montréal" {
		t.Fatalf("ville = %q", f.Ville)
	}
	if caller.calls != 1 {
		t.Fatalf("calls = %d", caller.calls)
	}
}

func TestExtractRetriesOnInvalidJSON(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		"not json at all",
		"{\"prix\": 450000}",
	}, errs: []error{nil, nil}}
	f, err := NewExtractor(caller).Extract(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if f.Prix == nil || *f.Prix != 450000 {
		t.Fatalf("prix = %v", f.Prix)
	}
	if caller.calls != 2 {
		t.Fatalf("calls = %d, want retry", caller.calls)
	}
}

func TestExtractRejectsNegativeAmounts(t *testing.T) {
	caller := &fakeCaller{responses: []string{
		"{\"prix\": -5}", "{\"prix\": -5}", "{\"prix\": -5}",
	}, errs: []error{nil, nil, nil}}
	if _, err := NewExtractor(caller).Extract(context.Background(), "x"); err == nil {
		t.Fatal("expected validation failure")
	}
	if caller.calls != 3 {
		t.Fatalf("calls = %d, want 3 attempts", caller.calls)
	}
}

func TestExtractFailsFastOnClientError(t *testing.T) {
	caller := &fakeCaller{errs: []error{fmt.Errorf("status code: 401 unauthorized")}}
	if _, err := NewExtractor(caller).Extract(context.Background(), "x"); err == nil {
		t.Fatal("expected transport failure")
	}
	if caller.calls != 1 {
		t.Fatalf("calls = %d, want no retry on client error", caller.calls)
	}
}

func TestExtractTruncatesLongText(t *testing.T) {
	long := make([]byte, maxPromptChars*2)
	for i := range long {
		long[i] = 'a'
	}
	caller := &fakeCaller{responses: []string{"{}"}}
	if _, err := NewExtractor(caller).Extract(context.Background(), string(long)); err != nil {
		t.Fatal(err)
	}
	if len(caller.prompts[0]) > maxPromptChars+1000 {
		t.Fatalf("prompt length = %d, want truncated", len(caller.prompts[0]))
	}
}
