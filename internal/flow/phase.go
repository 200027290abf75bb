package flow

// Phase is the step a run has reached.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseAuthorizing
	PhaseAuthorized
	PhaseAuthFailed
	PhaseFetching
	PhaseDone
	PhaseFetchFailed
)

// String makes Phase satisfy the fmt.Stringer interface.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseAuthorizing:
		return "Authorizing"
	case PhaseAuthorized:
		return "Authorized"
	case PhaseAuthFailed:
		return "AuthFailed"
	case PhaseFetching:
		return "Fetching"
	case PhaseDone:
		return "Done"
	case PhaseFetchFailed:
		return "FetchFailed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAuthFailed || p == PhaseFetchFailed
}
