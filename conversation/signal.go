package conversation

import "github.com/or4cl3ai/arch1tech/domain"

// Outcome classifies the state of the exchange the signal is derived
// from.
type Outcome int

const (
	// OutcomePending: the user turn is appended, the reply is not in.
	OutcomePending Outcome = iota
	// OutcomeSucceeded: the assistant reply arrived.
	OutcomeSucceeded
	// OutcomeFailed: the completion call failed.
	OutcomeFailed
)

// DeriveSignal computes the stability indicator. The signal is a
// liveness/mood cue, not service telemetry: while a reply is pending
// it is a weighted draw biased toward stable, on success it resets to
// stable, on failure it goes to alert. roll must be in [0, 1);
// callers inject it so tests stay deterministic.
func DeriveSignal(outcome Outcome, prev domain.SignalLevel, roll float64) domain.SignalLevel {
	switch outcome {
	case OutcomeSucceeded:
		return domain.SignalStable
	case OutcomeFailed:
		return domain.SignalAlert
	}

	switch {
	case roll < 0.80:
		return domain.SignalStable
	case roll < 0.95:
		return domain.SignalMonitoring
	default:
		return domain.SignalAlert
	}
}
