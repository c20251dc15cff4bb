package indicator

// Param describes one recognized option for external introspection tooling.
type Param struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "decimal", "enum"
	Default     interface{} `json:"default"`
	Enum        []string    `json:"enum,omitempty"`
	Description string      `json:"description"`
}

// OutputSpec describes the shape of an indicator's results. Scalar indicators
// list a single field; multi-output indicators list each named component.
type OutputSpec struct {
	Scalar bool     `json:"scalar"`
	Fields []string `json:"fields"`
}

func scalarOutput(field string) OutputSpec {
	return OutputSpec{Scalar: true, Fields: []string{field}}
}
