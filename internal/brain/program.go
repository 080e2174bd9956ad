package brain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record is the persisted form of an Element. A well-formed record has
// exactly one field set.
type Record struct {
	Operand   *float64 `json:"operand,omitempty" yaml:"operand,omitempty"`
	Operation *string  `json:"operation,omitempty" yaml:"operation,omitempty"`
	Variable  *string  `json:"variable,omitempty" yaml:"variable,omitempty"`
}

func OperandRecord(v float64) Record       { return Record{Operand: &v} }
func OperationRecord(symbol string) Record { return Record{Operation: &symbol} }
func VariableRecord(name string) Record    { return Record{Variable: &name} }

// Element converts r, reporting false when r is malformed.
func (r Record) Element() (Element, bool) {
	set := 0
	var el Element
	if r.Operand != nil {
		set++
		el = Element{Kind: Operand, Value: *r.Operand}
	}
	if r.Operation != nil {
		set++
		el = Element{Kind: Operation, Symbol: *r.Operation}
	}
	if r.Variable != nil {
		set++
		el = Element{Kind: Variable, Symbol: *r.Variable}
	}
	return el, set == 1
}

func recordOf(el Element) Record {
	switch el.Kind {
	case Operand:
		return OperandRecord(el.Value)
	case Operation:
		return OperationRecord(el.Symbol)
	default:
		return VariableRecord(el.Symbol)
	}
}

// Program is an exported history: an ordered list of single-key records.
// Decoding skips records of unknown shape instead of failing.
type Program []Record

// Program exports the history.
func (b *Brain) Program() Program {
	prog := make(Program, 0, len(b.history))
	for _, el := range b.history {
		prog = append(prog, recordOf(el))
	}
	return prog
}

// SetProgram replaces the history with prog. Malformed records are skipped.
func (b *Brain) SetProgram(prog Program) {
	b.Reset()
	for _, rec := range prog {
		if el, ok := rec.Element(); ok {
			b.history = append(b.history, el)
		}
	}
}

// decodeRecord builds a record from a single key and a payload decoder.
func decodeRecord(key string, decode func(any) error) (Record, bool) {
	switch key {
	case "operand":
		var v float64
		if decode(&v) != nil {
			return Record{}, false
		}
		return OperandRecord(v), true
	case "operation":
		var s string
		if decode(&s) != nil {
			return Record{}, false
		}
		return OperationRecord(s), true
	case "variable":
		var s string
		if decode(&s) != nil {
			return Record{}, false
		}
		return VariableRecord(s), true
	default:
		return Record{}, false
	}
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode program: %w", err)
	}

	prog := make(Program, 0, len(raw))
	for _, item := range raw {
		var fields map[string]json.RawMessage
		if json.Unmarshal(item, &fields) != nil || len(fields) != 1 {
			continue
		}
		for key, payload := range fields {
			if string(payload) == "null" {
				continue
			}
			rec, ok := decodeRecord(key, func(dst any) error {
				return json.Unmarshal(payload, dst)
			})
			if ok {
				prog = append(prog, rec)
			}
		}
	}

	*p = prog
	return nil
}

func (p *Program) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("decode program: line %d: expected a sequence", node.Line)
	}

	prog := make(Program, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			continue
		}
		key, payload := item.Content[0].Value, item.Content[1]
		if !scalarFor(key, payload) {
			continue
		}
		rec, ok := decodeRecord(key, payload.Decode)
		if ok {
			prog = append(prog, rec)
		}
	}

	*p = prog
	return nil
}

// scalarFor reports whether payload has the scalar type key expects. YAML
// would otherwise decode null as a zero value and stringify numbers.
func scalarFor(key string, payload *yaml.Node) bool {
	if payload.Kind != yaml.ScalarNode {
		return false
	}
	switch payload.ShortTag() {
	case "!!int", "!!float":
		return key == "operand"
	case "!!str":
		return key == "operation" || key == "variable"
	default:
		return false
	}
}
