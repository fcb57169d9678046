// Package search turns free-text search bar input into structured filter tags.
//
// The draft being typed is modelled as an explicit state: choosing a key, choosing an
// operator for a key, or entering the value(s) for a key and operator. Transitions are
// driven by events (selections, typing, backspace, blur) and always end by either
// committing a tag or returning to key selection.
package search

import (
	"github.com/rebeliceyang/qbsearch/internal/models"
)

// Stage is which suggestion source is active
type Stage int

const (
	StageAttributeKey Stage = iota
	StageOperator
	StageAttributeValue
)

func (s Stage) String() string {
	switch s {
	case StageAttributeKey:
		return "ATTRIBUTE_KEY"
	case StageOperator:
		return "OPERATOR"
	case StageAttributeValue:
		return "ATTRIBUTE_VALUE"
	default:
		return "UNKNOWN"
	}
}

// State is the in-progress draft. Implementations: ChoosingKey, ChoosingOperator, EnteringValue.
type State interface {
	Stage() Stage
	isState()
}

// ChoosingKey waits for an attribute key
type ChoosingKey struct{}

// ChoosingOperator has a key and waits for an operator
type ChoosingOperator struct {
	Key models.AttributeKey
}

// EnteringValue has a key and operator and accumulates the value
type EnteringValue struct {
	Key   models.AttributeKey
	Op    models.FilterOperator
	Value models.Value
}

func (ChoosingKey) Stage() Stage      { return StageAttributeKey }
func (ChoosingOperator) Stage() Stage { return StageOperator }
func (EnteringValue) Stage() Stage    { return StageAttributeValue }

func (ChoosingKey) isState()      {}
func (ChoosingOperator) isState() {}
func (EnteringValue) isState()    {}

// Draft returns the tag-shaped view of the state, and false while no key is chosen
func Draft(s State) (models.Tag, bool) {
	switch st := s.(type) {
	case ChoosingOperator:
		return models.Tag{Key: st.Key}, true
	case EnteringValue:
		return models.Tag{Key: st.Key, Op: st.Op, Value: st.Value.Clone()}, true
	default:
		return models.Tag{}, false
	}
}
