package values

// AbortReason records who asked a job to stop.
type AbortReason string

const (
	// AbortNone means the job was never asked to stop
	AbortNone AbortReason = ""
	// AbortUser is an external cancellation request
	AbortUser AbortReason = "user"
	// AbortFailFast is the automatic abort after a message at or above the fail-fast threshold
	AbortFailFast AbortReason = "fail_fast"
	// AbortShutdown is used when the hosting process is exiting
	AbortShutdown AbortReason = "shutdown"
)

// String returns the string representation
func (r AbortReason) String() string {
	if r == AbortNone {
		return "none"
	}
	return string(r)
}
