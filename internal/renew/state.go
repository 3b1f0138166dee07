package renew

// State is how far a run got.
type State string

// A run moves forward through these states. A failure after BACKED_UP
// goes to ROLLED_BACK and then DONE, so DONE alone does not mean success;
// Result.RolledBack tells the two apart.
const (
	StateStart       State = "START"
	StateBackedUp    State = "BACKED_UP"
	StateIssued      State = "ISSUED"
	StateDistributed State = "DISTRIBUTED"
	StateActivated   State = "ACTIVATED"
	StateRolledBack  State = "ROLLED_BACK"
	StateDone        State = "DONE"
)

// rollbackNeeded reports whether live directories may already differ from
// the backup.
func (s State) rollbackNeeded() bool {
	switch s {
	case StateStart, StateDone, StateRolledBack:
		return false
	default:
		return true
	}
}

// advance moves the run to s and records the transition.
func (r *Result) advance(s State) {
	r.State = s
	r.States = append(r.States, s)
}
