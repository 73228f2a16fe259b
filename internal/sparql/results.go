// Package sparql talks to a SPARQL 1.1 endpoint and decodes JSON result sets.
package sparql

import (
	"encoding/json"
	"fmt"
)

// Term is one RDF term of a binding (SPARQL 1.1 Query Results JSON Format)
type Term struct {
	Type     string `json:"type"` // uri, literal, typed-literal, bnode
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding maps variable names to terms
type Binding map[string]Term

// Results is a decoded SELECT result set
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// DecodeResults parses a SPARQL JSON result document
func DecodeResults(data []byte) (*Results, error) {
	var res Results
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &res, nil
}
