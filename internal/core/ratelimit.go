package core

// QuotaState captures the gate's view of the current quota window.
type QuotaState struct {
	Window int64 `json:"window" yaml:"window"`
	Hits   int   `json:"hits" yaml:"hits"`
	Limit  int   `json:"limit" yaml:"limit"`
}

// Remaining returns how many calls the window still admits.
func (s QuotaState) Remaining() int {
	if s.Hits >= s.Limit {
		return 0
	}
	return s.Limit - s.Hits
}
