package workflow

// Forget reasons reported to the Recorder.
const (
	ReasonHolderLost   = "holder_lost"
	ReasonHolderFull   = "holder_full"
	ReasonNotRepeating = "not_repeating"
)

// Recorder receives controller measurements. metrics.Recorder implements it
// on prometheus collectors.
type Recorder interface {
	ObserveRegistry(tracked, pending int)
	JobRecovered()
	JobForgotten(reason string)
	JobTransition(resumed bool)
	ObserveConstraint(spec string, available, inUse int)
	ForgetConstraint(spec string)
	ObserveMeltable(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRegistry(int, int)           {}
func (nopRecorder) JobRecovered()                      {}
func (nopRecorder) JobForgotten(string)                {}
func (nopRecorder) JobTransition(bool)                 {}
func (nopRecorder) ObserveConstraint(string, int, int) {}
func (nopRecorder) ForgetConstraint(string)            {}
func (nopRecorder) ObserveMeltable(int)                {}
