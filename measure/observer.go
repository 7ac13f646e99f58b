package measure

import "github.com/poiesic/sentsim/core"

// Observer receives measurement and corpus events.
type Observer interface {
	MeasureBegin(query string)
	MeasureSuccess(results []core.SimilarityResult)
	MeasureFail(err error)
	RegisterSuccess(sentence string)
	RegisterFail(sentence string, err error)
	DeleteSuccess(sentence string)
	DeleteFail(sentence string, err error)
}

// noopObserver is a no-op implementation of Observer
type noopObserver struct{}

var _ Observer = (*noopObserver)(nil)

func (n *noopObserver) MeasureBegin(_ string)                    {}
func (n *noopObserver) MeasureSuccess(_ []core.SimilarityResult) {}
func (n *noopObserver) MeasureFail(_ error)                      {}
func (n *noopObserver) RegisterSuccess(_ string)                 {}
func (n *noopObserver) RegisterFail(_ string, _ error)           {}
func (n *noopObserver) DeleteSuccess(_ string)                   {}
func (n *noopObserver) DeleteFail(_ string, _ error)             {}

// State is the measurement state of a Service.
type State int

const (
	Idle State = iota
	Measuring
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Measuring:
		return "measuring"
	}
	return "unknown"
}
