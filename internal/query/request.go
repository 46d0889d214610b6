package query

import (
	"bytes"
	"encoding/json"
)

// Request is one GraphQL request. QueryID names a persisted document and is
// resolved by the transport before execution.
type Request struct {
	Query         string         `json:"query,omitempty" example:"{ movie(imdbID: \"tt0133093\") { primaryTitle startYear } }"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty" swaggertype:"object"`
	QueryID       string         `json:"queryId,omitempty" example:"top-movies"`
}

// Object is a JSON object that keeps keys in insertion order.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Set stores v under key. A repeated key keeps its first position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	return len(o.keys)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type ErrorExtensions struct {
	Code string `json:"code" example:"VALIDATION_FAILED"`
}

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// FieldError locates a failed field. Path holds response keys and list
// indexes from the root; it is empty for errors that concern the whole
// document.
type FieldError struct {
	Message    string          `json:"message"`
	Locations  []Location      `json:"locations,omitempty"`
	Path       []any           `json:"path,omitempty" swaggertype:"array,string"`
	Extensions ErrorExtensions `json:"extensions"`
}

type Response struct {
	Data   json.RawMessage `json:"data" swaggertype:"object"`
	Errors []FieldError    `json:"errors,omitempty"`
}
