package alerting

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"salesdash/internal/sales"
	pkgerrors "salesdash/pkg/errors"
)

type Rule struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Active            bool           `json:"active"`
	EmailNotification bool           `json:"emailNotification"`
	Field             sales.FieldKey `json:"field"`
	Operator          Operator       `json:"operator"`
	Value             sales.Value    `json:"value" swaggertype:"string"`
}

// RuleDraft is the input for a new rule. A nil Active defaults to true.
type RuleDraft struct {
	Name              string         `json:"name"`
	Active            *bool          `json:"active,omitempty"`
	EmailNotification bool           `json:"emailNotification"`
	Field             sales.FieldKey `json:"field"`
	Operator          Operator       `json:"operator"`
	Value             sales.Value    `json:"value" swaggertype:"string"`
}

// RulePatch carries the fields to change; nil fields are left as they are.
// An empty Name asks for a generated one.
type RulePatch struct {
	Name              *string         `json:"name,omitempty"`
	Active            *bool           `json:"active,omitempty"`
	EmailNotification *bool           `json:"emailNotification,omitempty"`
	Field             *sales.FieldKey `json:"field,omitempty"`
	Operator          *Operator       `json:"operator,omitempty"`
	Value             *sales.Value    `json:"value,omitempty" swaggertype:"string"`
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// DefaultRules are the rules a fresh session starts with.
func DefaultRules() []RuleDraft {
	return []RuleDraft{
		{
			Name:     "Lucro Alto (> R$ 100)",
			Field:    sales.FieldProfit,
			Operator: OpGreater,
			Value:    sales.Number(100),
		},
		{
			Name:              "Status Devolvido",
			EmailNotification: true,
			Field:             sales.FieldShippingStatus,
			Operator:          OpEquals,
			Value:             sales.Text(string(sales.StatusReturned)),
		},
	}
}

// RuleStore holds the ordered rule list. Order is display priority only.
// It is not safe for concurrent use.
type RuleStore struct {
	registry *Registry
	rules    []Rule
	newID    func() string
}

type RuleStoreOption func(*RuleStore)

func WithIDGenerator(fn func() string) RuleStoreOption {
	return func(s *RuleStore) {
		s.newID = fn
	}
}

func NewRuleStore(registry *Registry, opts ...RuleStoreOption) *RuleStore {
	s := &RuleStore{
		registry: registry,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RuleStore) Create(draft RuleDraft) (Rule, error) {
	active := true
	if draft.Active != nil {
		active = *draft.Active
	}

	rule := Rule{
		Name:              draft.Name,
		Active:            active,
		EmailNotification: draft.EmailNotification,
		Field:             draft.Field,
		Operator:          draft.Operator,
		Value:             draft.Value,
	}

	normalized, err := s.normalize(rule)
	if err != nil {
		return Rule{}, err
	}

	normalized.ID = s.newID()
	s.rules = append(s.rules, normalized)
	return normalized, nil
}

func (s *RuleStore) Update(id string, patch RulePatch) (Rule, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Rule{}, ruleNotFound(id)
	}

	merged := s.rules[i]
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Active != nil {
		merged.Active = *patch.Active
	}
	if patch.EmailNotification != nil {
		merged.EmailNotification = *patch.EmailNotification
	}
	if patch.Field != nil {
		merged.Field = *patch.Field
	}
	if patch.Operator != nil {
		merged.Operator = *patch.Operator
	}
	if patch.Value != nil {
		merged.Value = *patch.Value
	}

	normalized, err := s.normalize(merged)
	if err != nil {
		return Rule{}, err
	}

	s.rules[i] = normalized
	return normalized, nil
}

func (s *RuleStore) SetActive(id string, active bool) (Rule, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Rule{}, ruleNotFound(id)
	}
	s.rules[i].Active = active
	return s.rules[i], nil
}

func (s *RuleStore) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ruleNotFound(id)
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	return nil
}

// Reorder swaps the rule with its neighbour. Moving past either end does nothing.
func (s *RuleStore) Reorder(id string, dir Direction) error {
	if dir != DirectionUp && dir != DirectionDown {
		return pkgerrors.ErrValidation.
			WithMessage(fmt.Sprintf("invalid direction %q", dir)).
			WithDetail("field", "direction")
	}

	i := s.indexOf(id)
	if i < 0 {
		return ruleNotFound(id)
	}

	j := i - 1
	if dir == DirectionDown {
		j = i + 1
	}
	if j < 0 || j >= len(s.rules) {
		return nil
	}

	s.rules[i], s.rules[j] = s.rules[j], s.rules[i]
	return nil
}

func (s *RuleStore) Get(id string) (Rule, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Rule{}, ruleNotFound(id)
	}
	return s.rules[i], nil
}

func (s *RuleStore) List() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

func (s *RuleStore) ActiveCount() int {
	n := 0
	for _, r := range s.rules {
		if r.Active {
			n++
		}
	}
	return n
}

func (s *RuleStore) Registry() *Registry {
	return s.registry
}

func (s *RuleStore) indexOf(id string) int {
	for i, r := range s.rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// normalize validates r against the registry, coerces numeric comparands and
// fills in a generated name.
func (s *RuleStore) normalize(r Rule) (Rule, error) {
	if r.Value.IsNull() || (r.Value.Kind() == sales.KindText && r.Value.Str() == "") {
		return Rule{}, validationError("value", "value required")
	}

	def, ok := s.registry.Get(r.Field)
	if !ok {
		return Rule{}, validationError("field", fmt.Sprintf("unknown field %q", r.Field))
	}

	if !r.Operator.Valid() || !def.Allows(r.Operator) {
		return Rule{}, validationError("operator",
			fmt.Sprintf("operator %q is not valid for %s fields", r.Operator, def.Type))
	}

	raw := r.Value.String()
	switch {
	case def.Type.Numeric():
		n, ok := r.Value.ToNumber()
		if !ok || !sales.IsFinite(n) {
			return Rule{}, validationError("value", fmt.Sprintf("value %q is not a number", r.Value.String()))
		}
		r.Value = sales.Number(n)
	case def.Type == FieldTypeEnumerated:
		if !def.HasOption(r.Value.String()) {
			return Rule{}, validationError("value",
				fmt.Sprintf("value %q is not one of: %s", r.Value.String(), strings.Join(def.Options, ", ")))
		}
		r.Value = sales.Text(r.Value.String())
	default:
		r.Value = sales.Text(r.Value.String())
	}

	if strings.TrimSpace(r.Name) == "" {
		r.Name = fmt.Sprintf("%s %s %s", def.Label, r.Operator, raw)
	}

	return r, nil
}

func validationError(field, message string) error {
	return pkgerrors.ErrValidation.WithMessage(message).WithDetail("field", field)
}

func ruleNotFound(id string) error {
	return pkgerrors.ErrNotFound.WithMessage("alert rule not found").WithDetail("rule_id", id)
}
