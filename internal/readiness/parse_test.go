package readiness

import (
	"errors"
	"testing"
)

const wellFormed = `{"status":"GO","uiColor":"green","shortMessage":"Train as planned.","rationale":"Recovery markers look good.","modification":null}`

func TestParseVerdict_PlainJSON(t *testing.T) {
	v, err := ParseVerdict(wellFormed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != StatusGo || v.UIColor != ColorGreen {
		t.Fatalf("unexpected verdict: %+v", v)
	}
	if v.ShortMessage != "Train as planned." || v.Rationale != "Recovery markers look good." {
		t.Fatalf("unexpected verdict text: %+v", v)
	}
	if v.Modification != nil {
		t.Fatalf("expected nil modification for GO")
	}
}

func TestParseVerdict_FencedJSON(t *testing.T) {
	fenced := "```json\n" + wellFormed + "\n```"
	v, err := ParseVerdict(fenced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plain, _ := ParseVerdict(wellFormed)
	if *v != *plain {
		t.Fatalf("fenced parse differs from plain parse: %+v vs %+v", v, plain)
	}
}

func TestParseVerdict_FenceWithoutLanguageTag(t *testing.T) {
	fenced := "```\n" + wellFormed + "\n```"
	if _, err := ParseVerdict(fenced); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseVerdict_Garbage(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		"```json\nstill not json\n```",
		"",
		"{\"half\":",
	} {
		v, err := ParseVerdict(raw)
		if !errors.Is(err, ErrParse) {
			t.Fatalf("raw=%q: expected ErrParse, got %v", raw, err)
		}
		if v != nil {
			t.Fatalf("raw=%q: must not return a partial verdict", raw)
		}
	}
}

func TestParseVerdict_MissingStatus(t *testing.T) {
	raw := `{"uiColor":"green","shortMessage":"x","rationale":"y","modification":null}`
	if _, err := ParseVerdict(raw); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for missing status, got %v", err)
	}
}

func TestParseVerdict_SchemaChecks(t *testing.T) {
	cases := map[string]string{
		"unknown status":         `{"status":"MAYBE","uiColor":"green","shortMessage":"x","rationale":"y","modification":"z"}`,
		"empty shortMessage":     `{"status":"GO","uiColor":"green","shortMessage":"","rationale":"y","modification":null}`,
		"empty rationale":        `{"status":"GO","uiColor":"green","shortMessage":"x","rationale":" ","modification":null}`,
		"missing uiColor":        `{"status":"GO","shortMessage":"x","rationale":"y","modification":null}`,
		"null mod for non-GO":    `{"status":"CAUTION","uiColor":"yellow","shortMessage":"x","rationale":"y","modification":null}`,
	}
	for name, raw := range cases {
		if _, err := ParseVerdict(raw); !errors.Is(err, ErrParse) {
			t.Fatalf("%s: expected ErrParse, got %v", name, err)
		}
	}
}

func TestParseVerdict_ColorMismatchPassesThrough(t *testing.T) {
	raw := `{"status":"GO","uiColor":"red","shortMessage":"x","rationale":"y","modification":null}`
	v, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.UIColor != ColorRed {
		t.Fatalf("parser must not re-derive uiColor, got %q", v.UIColor)
	}
}
