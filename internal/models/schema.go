package models

// SchemaType names a JSON schema type.
type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
)

// Schema is the subset of JSON schema understood by structured-output
// providers. Providers translate it into their own representation.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// QuestionFields lists the fields every generated question must carry.
var QuestionFields = []string{"question", "options", "answer", "explanation", "difficulty", "topic"}

// QuestionSchema returns the schema requested from the generation service: an
// array of question objects.
func QuestionSchema() *Schema {
	return &Schema{
		Type: TypeArray,
		Items: &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"question": {Type: TypeString},
				"options": {
					Type:        TypeArray,
					Description: "Exactly four answer options, in A, B, C, D order",
					Items:       &Schema{Type: TypeString},
				},
				"answer": {
					Type:        TypeString,
					Description: "One of A, B, C, D",
					Enum:        []string{"A", "B", "C", "D"},
				},
				"explanation": {Type: TypeString},
				"difficulty":  {Type: TypeString},
				"topic":       {Type: TypeString},
			},
			Required: append([]string(nil), QuestionFields...),
		},
	}
}
