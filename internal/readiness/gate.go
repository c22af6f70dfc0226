package readiness

import (
	"fmt"
	"strings"
)

// Gate thresholds. Both comparisons are strict: a check-in reporting exactly
// 5 hours of sleep or pain level exactly 6 falls through to the advisor.
const (
	gateMinSleepHours = 5.0
	gateMaxPainLevel  = 6
)

const gateModification = "Do not train today. Reschedule the session after getting at least 8 hours of sleep."

// EvaluateGate applies the hard stop thresholds before any external call is
// made. It returns nil when the check-in clears the gate. Rules are checked
// in priority order and the first match wins.
func EvaluateGate(in Input) *Verdict {
	if in.SleepHours < gateMinSleepHours {
		return stopVerdict(
			"Training stopped: not enough sleep.",
			fmt.Sprintf("Critical sleep deprivation: %.1f hours reported. Training in this state carries a high injury risk and blocks recovery.", in.SleepHours),
		)
	}
	if in.PainLevel > gateMaxPainLevel {
		loc := strings.TrimSpace(in.PainLocation)
		if loc == "" {
			loc = "an unspecified location"
		}
		return stopVerdict(
			"Training stopped: acute pain reported.",
			fmt.Sprintf("Acute pain detected at %s (level %d/10). Loading through acute pain risks turning it into a lasting injury.", loc, in.PainLevel),
		)
	}
	return nil
}

func stopVerdict(short, rationale string) *Verdict {
	mod := gateModification
	return &Verdict{
		Status:       StatusStop,
		UIColor:      ColorFor(StatusStop),
		ShortMessage: short,
		Rationale:    rationale,
		Modification: &mod,
	}
}
