package alerting

type Operator string

const (
	OpGreater   Operator = "maior que"
	OpLess      Operator = "menor que"
	OpEquals    Operator = "igual a"
	OpNotEquals Operator = "diferente de"
	OpContains  Operator = "contém"
)

func (o Operator) Valid() bool {
	switch o {
	case OpGreater, OpLess, OpEquals, OpNotEquals, OpContains:
		return true
	}
	return false
}

// OperatorsFor returns the operators a field of type t accepts, in the order
// they are offered to the user. The first entry is the default.
func OperatorsFor(t FieldType) []Operator {
	switch t {
	case FieldTypeNumber, FieldTypeCurrency:
		return []Operator{OpGreater, OpLess, OpEquals, OpNotEquals}
	case FieldTypeText:
		return []Operator{OpContains, OpEquals, OpNotEquals}
	case FieldTypeEnumerated:
		return []Operator{OpEquals, OpNotEquals}
	default:
		return []Operator{OpEquals}
	}
}
