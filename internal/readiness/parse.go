package readiness

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse marks advisor output that is not valid structured output even
// after fence stripping. The caller decides the fallback; this package never
// invents a verdict.
var ErrParse = errors.New("external response was not valid structured output")

// ParseVerdict converts raw advisor text into a validated Verdict. It first
// parses the text as-is, then retries once with markdown code fences
// stripped. The model's output is untrusted: required fields and the status
// enum are checked before a Verdict is returned. UIColor is passed through
// without being re-derived from Status.
func ParseVerdict(raw string) (*Verdict, error) {
	v, err := parseAndValidate(raw)
	if err == nil {
		return v, nil
	}
	stripped := stripCodeFence(raw)
	if stripped != raw {
		if v, err2 := parseAndValidate(stripped); err2 == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrParse, err)
}

func parseAndValidate(s string) (*Verdict, error) {
	var v Verdict
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	switch v.Status {
	case StatusGo, StatusCaution, StatusStop:
	case "":
		return nil, errors.New("missing status")
	default:
		return nil, fmt.Errorf("status %q outside GO/CAUTION/STOP", v.Status)
	}
	if strings.TrimSpace(string(v.UIColor)) == "" {
		return nil, errors.New("missing uiColor")
	}
	if strings.TrimSpace(v.ShortMessage) == "" {
		return nil, errors.New("missing shortMessage")
	}
	if strings.TrimSpace(v.Rationale) == "" {
		return nil, errors.New("missing rationale")
	}
	if v.Modification == nil && v.Status != StatusGo {
		return nil, errors.New("modification may be null only for GO")
	}
	return &v, nil
}

// stripCodeFence removes a leading ```lang line and a trailing ``` so a
// fenced JSON block can be retried as plain JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
