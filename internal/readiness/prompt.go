package readiness

import (
	"fmt"
	"strconv"
	"strings"
)

// Used when no audit-instruction template is active for the role.
const defaultAuditInstructions = "Determine the user's training readiness for today based on the metrics below. Weigh recovery (sleep), stress and pain together rather than in isolation."

const responseContract = `Respond with ONLY a JSON object, no markdown, matching exactly:
{"status":"GO"|"CAUTION"|"STOP","uiColor":"green"|"yellow"|"red","shortMessage":string,"rationale":string,"modification":string|null}
"modification" may be null only when status is "GO".`

// BuildPrompt composes the advisor prompt: global context first, then the
// audit instructions, then the serialized check-in, then the JSON response
// contract. Pure string composition; template retrieval happens upstream.
func BuildPrompt(globalContext, auditInstructions string, in Input) string {
	var b strings.Builder
	if gc := strings.TrimSpace(globalContext); gc != "" {
		b.WriteString(gc)
		b.WriteString("\n\n")
	}
	ai := strings.TrimSpace(auditInstructions)
	if ai == "" {
		ai = defaultAuditInstructions
	}
	b.WriteString(ai)
	b.WriteString("\n\nToday's check-in:\n")
	fmt.Fprintf(&b, "- Sleep hours: %s\n", trimFloat(in.SleepHours))
	fmt.Fprintf(&b, "- Stress level (0-10): %d\n", in.StressLevel)
	fmt.Fprintf(&b, "- Cycle day: %s\n", cycleDayString(in.CycleDay))
	fmt.Fprintf(&b, "- Pain location: %s\n", painLocationString(in.PainLocation))
	fmt.Fprintf(&b, "- Pain level (0-10): %d\n", in.PainLevel)
	b.WriteString("\n")
	b.WriteString(responseContract)
	return b.String()
}

func cycleDayString(d *int) string {
	if d == nil {
		return "N/A"
	}
	return strconv.Itoa(*d)
}

func painLocationString(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return "N/A"
	}
	return loc
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
