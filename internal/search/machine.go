package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/qbsearch/internal/filter"
	"github.com/rebeliceyang/qbsearch/internal/models"
)

var (
	// ErrInputNotEmpty is returned when a tag is edited or removed while text is being typed
	ErrInputNotEmpty = errors.New("search input is not empty")
	// ErrTagIndex is returned for an out of range tag index
	ErrTagIndex = errors.New("tag index out of range")
	// ErrUnexpectedStage is returned when a selection does not fit the current stage
	ErrUnexpectedStage = errors.New("selection does not match the current stage")
	// ErrEmptyValue is returned when a blank value is picked; the draft stays open
	ErrEmptyValue = errors.New("value is empty")
)

// maxReconcileSteps bounds the typing reconciliation loop; any input settles in a few steps
const maxReconcileSteps = 8

// Config configures a Machine
type Config struct {
	Keys        []models.AttributeKey
	Values      models.AttributeValuesMap
	WhereClause models.WhereClauseConfig

	// Filters seeds the tag list and is the initial externally observed filter
	Filters  models.TagFilter
	OnChange func(models.TagFilter)

	NewID  IDFunc
	Logger *zerolog.Logger
}

// Machine is the search bar state machine. It is not safe for concurrent use.
type Machine struct {
	cfg      Config
	log      zerolog.Logger
	state    State
	input    string
	tags     []models.Tag
	external models.TagFilter
}

// New creates a machine seeded from cfg.Filters
func New(cfg Config) *Machine {
	if cfg.NewID == nil {
		cfg.NewID = ShortID
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "search").Logger()
	}

	m := &Machine{
		cfg:      cfg,
		log:      log,
		state:    ChoosingKey{},
		tags:     Import(cfg.Filters),
		external: normalize(cfg.Filters),
	}
	m.sync()
	return m
}

// State returns the current draft state
func (m *Machine) State() State { return m.state }

// Stage returns the active suggestion source
func (m *Machine) Stage() Stage { return m.state.Stage() }

// Input returns the current search text
func (m *Machine) Input() string { return m.input }

// Filters returns the last filter published through OnChange, or the seed
func (m *Machine) Filters() models.TagFilter { return m.external }

// Tags returns a copy of the committed tags
func (m *Machine) Tags() []models.Tag {
	out := make([]models.Tag, len(m.tags))
	copy(out, m.tags)
	return out
}

// QueryTags returns the chip strings of the committed tags
func (m *Machine) QueryTags() []string {
	out := make([]string, len(m.tags))
	for i, t := range m.tags {
		out[i] = t.String()
	}
	return out
}

// Options returns the dropdown suggestions for the current state
func (m *Machine) Options() []Option {
	return Resolve(m.state, m.input, m.cfg.Keys, m.cfg.Values)
}

// SetAttributes replaces the key catalog and sample values
func (m *Machine) SetAttributes(keys []models.AttributeKey, values models.AttributeValuesMap) {
	m.cfg.Keys = keys
	m.cfg.Values = values
}

// Reset replaces the tag list with filters and clears the draft
func (m *Machine) Reset(filters models.TagFilter) {
	m.tags = Import(filters)
	m.external = normalize(filters)
	m.clearDraft()
	m.sync()
}

// SetInput handles typing: the text is re-split and reconciled with the draft
func (m *Machine) SetInput(text string) {
	m.input = text
	if strings.TrimSpace(text) == "" {
		m.state = ChoosingKey{}
		return
	}
	for i := 0; i < maxReconcileSteps; i++ {
		if !m.reconcile() {
			return
		}
	}
	m.log.Warn().Str("input", text).Msg("typing reconciliation did not settle")
}

// reconcile applies one transition inferred from the input; false means the state is settled
func (m *Machine) reconcile() bool {
	tok := filter.SplitTag(m.input)

	switch st := m.state.(type) {
	case ChoosingKey:
		if tok.Operator == "" || tok.Key == "" {
			return false
		}
		key, known := m.lookupKey(tok.Key)
		if tok.Loose && !known {
			// free text like "timeout in checkout" stays a body search
			return false
		}
		m.advance(key, tok)
		return true

	case ChoosingOperator:
		if !keyMatches(tok, st.Key) {
			m.transition(ChoosingKey{})
			return true
		}
		if tok.Operator == "" {
			return false
		}
		m.advance(st.Key, tok)
		return true

	case EnteringValue:
		if !keyMatches(tok, st.Key) {
			m.transition(ChoosingKey{})
			return true
		}
		if tok.Operator != st.Op {
			m.transition(ChoosingOperator{Key: st.Key})
			return true
		}
		if !st.Value.Equal(tok.Value) {
			st.Value = tok.Value.Clone()
			m.state = st
		}
		return false
	}
	return false
}

// advance moves a key with a freshly typed operator forward
func (m *Machine) advance(key models.AttributeKey, tok filter.Token) {
	if filter.IsExistence(tok.Operator) {
		m.commit(models.Tag{Key: key, Op: tok.Operator})
		return
	}
	m.transition(EnteringValue{Key: key, Op: tok.Operator, Value: tok.Value.Clone()})
}

func keyMatches(tok filter.Token, key models.AttributeKey) bool {
	return tok.Key == key.Key || tok.KeyWord() == key.Key
}

// resolveKey finds a catalog key by name; unknown names become free-form keys
func (m *Machine) resolveKey(name string) models.AttributeKey {
	k, _ := m.lookupKey(name)
	return k
}

func (m *Machine) lookupKey(name string) (models.AttributeKey, bool) {
	for _, k := range m.cfg.Keys {
		if k.Key == name {
			return k, true
		}
	}
	return models.AttributeKey{Key: name}, false
}

// Select handles a dropdown pick. Keys arrive JSON encoded; a value that does not decode is used as a key name.
func (m *Machine) Select(raw string) error {
	switch m.state.(type) {
	case ChoosingOperator:
		return m.SelectOperator(models.FilterOperator(strings.ToUpper(raw)))
	case EnteringValue:
		return m.SelectValue(raw)
	default:
		k, ok := decodeKey(raw)
		if !ok {
			k = m.resolveKey(strings.TrimSpace(raw))
		}
		m.SelectKey(k)
		return nil
	}
}

// SelectKey picks the key of the draft and moves on to the operator
func (m *Machine) SelectKey(k models.AttributeKey) {
	if k.Key == "" {
		return
	}
	m.transition(ChoosingOperator{Key: k})
	m.input = k.Key
}

// SelectOperator picks the operator; EXISTS and NOT_EXISTS commit immediately
func (m *Machine) SelectOperator(op models.FilterOperator) error {
	st, ok := m.state.(ChoosingOperator)
	if !ok {
		return fmt.Errorf("select operator %s in stage %s: %w", op, m.Stage(), ErrUnexpectedStage)
	}
	if filter.IsExistence(op) {
		m.commit(models.Tag{Key: st.Key, Op: op})
		return nil
	}
	m.transition(EnteringValue{Key: st.Key, Op: op, Value: models.Value{List: filter.IsInNotIn(op)}})
	m.input = fmt.Sprintf("%s %s", st.Key.Key, op)
	return nil
}

// SelectValue picks a value. For IN/NOT_IN, picking a value that is already listed commits the list;
// any other value replaces the slot being typed and opens a new one.
func (m *Machine) SelectValue(v string) error {
	st, ok := m.state.(EnteringValue)
	if !ok {
		return fmt.Errorf("select value in stage %s: %w", m.Stage(), ErrUnexpectedStage)
	}
	if strings.TrimSpace(v) == "" {
		return ErrEmptyValue
	}

	if !filter.IsInNotIn(st.Op) {
		m.commit(models.Tag{Key: st.Key, Op: st.Op, Value: models.Scalar(v)})
		return nil
	}

	tok := filter.SplitTag(m.input)
	if tok.Value.Contains(v) {
		m.commit(models.Tag{Key: st.Key, Op: st.Op, Value: models.Value{List: true, Items: tok.Value.Items}})
		return nil
	}

	items := append([]string{}, tok.Value.Items...)
	if len(items) == 0 {
		items = append(items, v)
	} else {
		items[len(items)-1] = v
	}
	m.SetInput(fmt.Sprintf("%s %s %s,", st.Key.Key, st.Op, models.ListOf(items...).String()))
	return nil
}

// BackspaceOnEmpty removes the most recently committed tag when the input is empty
func (m *Machine) BackspaceOnEmpty() bool {
	if m.input != "" || len(m.tags) == 0 {
		return false
	}
	m.tags = m.tags[:len(m.tags)-1]
	m.sync()
	return true
}

// Blur finishes the draft when the input loses focus. It reports whether a tag was committed;
// a draft that cannot be completed is discarded.
func (m *Machine) Blur() bool {
	if m.input == "" {
		return false
	}

	draft, hasKey := Draft(m.state)
	text := strings.TrimSpace(m.input)
	if hasKey {
		text = draft.Key.Key
	}

	switch {
	case draft.Op == "" && text != "" && m.bodyFallback():
		m.commit(models.Tag{Key: models.BodyKey(), Op: models.OpContains, Value: models.Scalar(text)})
		return true
	case hasKey && filter.IsExistence(draft.Op):
		m.commit(models.Tag{Key: draft.Key, Op: draft.Op})
		return true
	case hasKey && filter.ValidValue(draft.Op, draft.Value):
		m.commit(draft)
		return true
	}

	m.log.Debug().Str("input", m.input).Str("stage", m.Stage().String()).Msg("discarding incomplete draft")
	m.clearDraft()
	return false
}

func (m *Machine) bodyFallback() bool {
	return m.cfg.WhereClause.CustomKey == "body" && m.cfg.WhereClause.CustomOp == models.OpContains
}

// EditTag pulls tag i back into the draft for re-entry
func (m *Machine) EditTag(i int) error {
	if m.input != "" {
		return ErrInputNotEmpty
	}
	if i < 0 || i >= len(m.tags) {
		return fmt.Errorf("edit tag %d of %d: %w", i, len(m.tags), ErrTagIndex)
	}

	tag := m.tags[i]
	m.tags = append(m.tags[:i:i], m.tags[i+1:]...)
	m.transition(EnteringValue{Key: tag.Key, Op: tag.Op, Value: tag.Value.Clone()})
	m.input = tag.String()
	m.sync()
	return nil
}

// RemoveTag deletes tag i
func (m *Machine) RemoveTag(i int) error {
	if m.input != "" {
		return ErrInputNotEmpty
	}
	if i < 0 || i >= len(m.tags) {
		return fmt.Errorf("remove tag %d of %d: %w", i, len(m.tags), ErrTagIndex)
	}
	m.tags = append(m.tags[:i:i], m.tags[i+1:]...)
	m.sync()
	return nil
}

func (m *Machine) transition(next State) {
	if next.Stage() != m.state.Stage() {
		m.log.Debug().
			Str("from", m.state.Stage().String()).
			Str("to", next.Stage().String()).
			Msg("stage change")
	}
	m.state = next
}

// commit appends a completed tag and starts a new draft
func (m *Machine) commit(tag models.Tag) {
	m.clearDraft()
	if tag.Key.Key == "" {
		m.log.Debug().Str("op", string(tag.Op)).Msg("dropping tag without key")
		return
	}
	m.tags = append(m.tags, tag)
	m.log.Debug().Str("tag", tag.String()).Msg("tag committed")
	m.sync()
}

func (m *Machine) clearDraft() {
	m.transition(ChoosingKey{})
	m.input = ""
}

// sync publishes the tag list when it differs from the last observed external filter
func (m *Machine) sync() {
	exported, tags, changed := Reconcile(m.tags, m.external, m.cfg.NewID)
	if !changed {
		return
	}
	m.tags = tags
	m.external = exported
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(exported)
	}
}
