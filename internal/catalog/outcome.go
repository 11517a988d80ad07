package catalog

import (
	"appdeck/internal/scrapers/playstore"
	"fmt"
)

type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is one state of a catalog attempt. Outcomes are values, the slices they
// carry are never modified after the Outcome is sent.
type Outcome struct {
	State State

	// Records is set when State is StateSuccess.
	Records []playstore.AppRecord

	// Kind, Cause and Previous are set when State is StateError. Previous holds the
	// last successful catalog of the same page, if one is still retained.
	Kind     ErrorKind
	Cause    error
	Previous []playstore.AppRecord
}

func Loading() Outcome {
	return Outcome{State: StateLoading}
}

func Success(records []playstore.AppRecord) Outcome {
	return Outcome{State: StateSuccess, Records: records}
}

func Failure(kind ErrorKind, cause error, previous []playstore.AppRecord) Outcome {
	return Outcome{
		State:    StateError,
		Kind:     kind,
		Cause:    cause,
		Previous: previous,
	}
}

func (o Outcome) String() string {
	switch o.State {
	case StateSuccess:
		return fmt.Sprintf("success(%d records)", len(o.Records))
	case StateError:
		return fmt.Sprintf("error(%s)", o.Kind)
	}
	return o.State.String()
}
