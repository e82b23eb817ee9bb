package correspondence

// State identifies one lifecycle state of a correspondence. The numeric
// values are shared with the lookup catalog consumed by reporting clients,
// so they are stable identifiers rather than positions in an ordering.
type State int

const (
	StateReceived State = 1
	StateInReview State = 2
	StateResolved State = 3
	StateDerived  State = 4
	StateArchived State = 5
)

// StateReceived is the unique initial state; the creation audit entry is
// always {from: none, to: StateReceived}.
const InitialState = StateReceived
