package core

// Outcome classifies what happened to a single dispatch attempt.
type Outcome string

const (
	// OutcomeAdmitted means the gate admitted the call and the remote
	// answered 200 with a payload.
	OutcomeAdmitted Outcome = "admitted"
	// OutcomeRemoteFailure means the call was admitted (and counted) but the
	// remote answered non-200 or the transport failed.
	OutcomeRemoteFailure Outcome = "remote_failure"
	// OutcomeRejected means the gate refused the call; no network activity.
	OutcomeRejected Outcome = "rejected"
	// OutcomeGateUnavailable means the gate could not decide; no network activity.
	OutcomeGateUnavailable Outcome = "gate_unavailable"
	// OutcomeInvalid means the request was malformed; no gate or network activity.
	OutcomeInvalid Outcome = "invalid"
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	return string(o)
}
