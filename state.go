package geocsv

// State is the lifecycle stage of a conversion run.
//
//	Idle → Loading → Ready → Streaming → Finalizing → Done
//	any stage but Done → Aborted
type State int32

// Conversion states.
const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateStreaming
	StateFinalizing
	StateDone
	StateAborted
)

var stateNames = []string{
	"idle",
	"loading",
	"ready",
	"streaming",
	"finalizing",
	"done",
	"aborted",
}

// String returns the lower-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}
