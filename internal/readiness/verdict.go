// Package readiness holds the pre-workout decision pipeline: a deterministic
// safety gate evaluated before anything else, a prompt assembler for the
// contextual advisor, and a parser for the advisor's structured reply.
package readiness

// Status is the overall training recommendation, ordered by severity.
type Status string

const (
	StatusGo      Status = "GO"
	StatusCaution Status = "CAUTION"
	StatusStop    Status = "STOP"
)

// Color is the presentation hint shipped alongside Status.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// ColorFor is the canonical Status -> Color mapping. Gate and fallback
// verdicts always use it; advisor-produced verdicts keep whatever color the
// model chose (the orchestrator only warns on a mismatch).
func ColorFor(s Status) Color {
	switch s {
	case StatusGo:
		return ColorGreen
	case StatusCaution:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Input is one check-in as reported by the user. It is treated as an
// immutable value; nothing in the pipeline writes to it.
type Input struct {
	SleepHours   float64
	StressLevel  int
	CycleDay     *int
	PainLevel    int
	PainLocation string
}

// Verdict is the structured recommendation returned to the caller.
// Modification is nil only when Status is GO.
type Verdict struct {
	Status       Status  `json:"status"`
	UIColor      Color   `json:"uiColor"`
	ShortMessage string  `json:"shortMessage"`
	Rationale    string  `json:"rationale"`
	Modification *string `json:"modification"`
}
