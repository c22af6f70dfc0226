package readiness

import (
	"strings"
	"testing"
)

func TestBuildPrompt_SectionOrder(t *testing.T) {
	day := 14
	in := Input{SleepHours: 7.5, StressLevel: 4, CycleDay: &day, PainLevel: 2, PainLocation: "right elbow"}
	p := BuildPrompt("You are the Heavy Duty readiness coach.", "Audit the metrics conservatively.", in)

	idxGlobal := strings.Index(p, "You are the Heavy Duty readiness coach.")
	idxAudit := strings.Index(p, "Audit the metrics conservatively.")
	idxSleep := strings.Index(p, "Sleep hours: 7.5")
	idxContract := strings.Index(p, `"status":"GO"|"CAUTION"|"STOP"`)
	for name, idx := range map[string]int{"global": idxGlobal, "audit": idxAudit, "sleep": idxSleep, "contract": idxContract} {
		if idx == -1 {
			t.Fatalf("prompt missing %s section:\n%s", name, p)
		}
	}
	if !(idxGlobal < idxAudit && idxAudit < idxSleep && idxSleep < idxContract) {
		t.Fatalf("sections out of order: global=%d audit=%d sleep=%d contract=%d", idxGlobal, idxAudit, idxSleep, idxContract)
	}
	if !strings.Contains(p, "Cycle day: 14") {
		t.Fatalf("cycle day not rendered: %s", p)
	}
	if !strings.Contains(p, "Pain location: right elbow") {
		t.Fatalf("pain location not rendered: %s", p)
	}
	if !strings.Contains(p, "Stress level (0-10): 4") {
		t.Fatalf("stress not rendered: %s", p)
	}
	if !strings.Contains(p, "Pain level (0-10): 2") {
		t.Fatalf("pain level not rendered: %s", p)
	}
}

func TestBuildPrompt_AbsentFieldsRenderNA(t *testing.T) {
	in := Input{SleepHours: 6, StressLevel: 5, PainLevel: 1}
	p := BuildPrompt("", "", in)
	if !strings.Contains(p, "Cycle day: N/A") {
		t.Fatalf("nil cycle day should render N/A:\n%s", p)
	}
	if !strings.Contains(p, "Pain location: N/A") {
		t.Fatalf("empty pain location should render N/A:\n%s", p)
	}
}

func TestBuildPrompt_TemplateFallbacks(t *testing.T) {
	in := Input{SleepHours: 8, StressLevel: 1, PainLevel: 0}
	p := BuildPrompt("", "", in)
	if strings.HasPrefix(p, "\n") {
		t.Fatalf("empty global context should not leave a leading blank section")
	}
	if !strings.Contains(p, "training readiness") {
		t.Fatalf("missing audit instructions should fall back to the generic instruction:\n%s", p)
	}
}

func TestBuildPrompt_IsDeterministic(t *testing.T) {
	in := Input{SleepHours: 6.25, StressLevel: 7, PainLevel: 3, PainLocation: "neck"}
	if BuildPrompt("ctx", "audit", in) != BuildPrompt("ctx", "audit", in) {
		t.Fatalf("prompt assembly must be deterministic")
	}
}
