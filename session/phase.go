package session

// Phase is the observable processing stage of a session.
type Phase int

const (
	Idle Phase = iota
	Loading
	ProcessingAudio
	Transcribing
	Enhancing
	Completed
	Error
	Cancelled
)

var phaseNames = [...]string{
	Idle:            "idle",
	Loading:         "loading",
	ProcessingAudio: "processing_audio",
	Transcribing:    "transcribing",
	Enhancing:       "enhancing",
	Completed:       "completed",
	Error:           "error",
	Cancelled:       "cancelled",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether no further transitions can follow p.
func (p Phase) Terminal() bool {
	return p == Completed || p == Error || p == Cancelled
}
