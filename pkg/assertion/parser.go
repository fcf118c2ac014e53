package assertion

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseCheckString splits a compact "name:literal" check into the
// catalog name and the literal. ok is false when there is no colon.
//
// The literal is read as one YAML scalar, so numbers, booleans and
// null come back typed. Anything else (empty text, mappings,
// sequences, malformed YAML) is returned as the raw string.
//
//	"isEqualTo:200"                -> ("isEqualTo", 200, true)
//	"isOfType:string"              -> ("isOfType", "string", true)
//	"isEqualTo:dial tcp: refused"  -> ("isEqualTo", "dial tcp: refused", true)
//	"isArray"                      -> ("isArray", nil, false)
func ParseCheckString(s string) (name string, literal any, ok bool) {
	name, raw, ok := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.TrimSpace(name)
	if !ok {
		return name, nil, false
	}
	return name, scalar(raw), true
}

func scalar(raw string) any {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return raw
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.ScalarNode {
		return raw
	}
	var v any
	if err := doc.Content[0].Decode(&v); err != nil {
		return raw
	}
	return v
}
