package brain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleBrain() *Brain {
	b := New()
	b.AppendOperand(2)
	b.AppendOperation("×")
	b.AppendVariable("M")
	b.AppendOperation("+")
	b.AppendOperand(1.5)
	b.AppendOperation("=")
	return b
}

func TestProgramJSONShape(t *testing.T) {
	data, err := json.Marshal(sampleBrain().Program())
	require.NoError(t, err)

	want := `[{"operand":2},{"operation":"×"},{"variable":"M"},{"operation":"+"},{"operand":1.5},{"operation":"="}]`
	assert.JSONEq(t, want, string(data))
}

func TestProgramJSONRoundTrip(t *testing.T) {
	orig := sampleBrain()
	data, err := json.Marshal(orig.Program())
	require.NoError(t, err)

	var prog Program
	require.NoError(t, json.Unmarshal(data, &prog))

	restored := New()
	restored.SetProgram(prog)

	vars := map[string]float64{"M": 4}
	assert.Equal(t, orig.Evaluate(vars, nil), restored.Evaluate(vars, nil))
	assert.Equal(t, orig.History(), restored.History())
}

func TestProgramYAMLRoundTrip(t *testing.T) {
	orig := sampleBrain()
	data, err := yaml.Marshal(orig.Program())
	require.NoError(t, err)

	var prog Program
	require.NoError(t, yaml.Unmarshal(data, &prog))

	restored := New()
	restored.SetProgram(prog)
	assert.Equal(t, orig.History(), restored.History())
}

func TestProgramJSONSkipsMalformedRecords(t *testing.T) {
	input := `[
		{"operand": 3},
		{"operand": "three"},
		{"operation": "+", "variable": "M"},
		{},
		{"colour": "red"},
		{"operand": null},
		"bare",
		{"operand": 4},
		{"operation": "="}
	]`

	var prog Program
	require.NoError(t, json.Unmarshal([]byte(input), &prog))
	require.Len(t, prog, 3)

	b := New()
	b.SetProgram(prog)
	res := b.Evaluate(nil, nil)
	assert.Equal(t, 4.0, res.Value)
	assert.Equal(t, "4", res.Description)
}

func TestProgramJSONRejectsNonList(t *testing.T) {
	var prog Program
	assert.Error(t, json.Unmarshal([]byte(`{"operand": 1}`), &prog))
}

func TestProgramYAMLSkipsMalformedRecords(t *testing.T) {
	input := `
- operand: 6
- operand: six
- {operation: "+", variable: M}
- plain
- operand: null
- operand: "6"
- operation: 5
- variable: ~
- variable: [M]
- operation: "+"
- variable: M
- operation: "="
`
	var prog Program
	require.NoError(t, yaml.Unmarshal([]byte(input), &prog))
	require.Len(t, prog, 4)

	b := New()
	b.SetProgram(prog)
	res := b.Evaluate(map[string]float64{"M": 1}, nil)
	assert.Equal(t, 7.0, res.Value)
	assert.Equal(t, "6+M", res.Description)
}

func TestProgramDecodersAgree(t *testing.T) {
	inputs := []string{
		`[{"operand":3},{"operation":"+"},{"operand":null},{"operation":"="}]`,
		`[{"operand":2},{"operation":5},{"variable":null},{"variable":"M"}]`,
		`[{"operand":"2"},{"operation":["+"]},{"operand":1.5e3},{"operation":"√"}]`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			var fromJSON, fromYAML Program
			require.NoError(t, json.Unmarshal([]byte(input), &fromJSON))
			require.NoError(t, yaml.Unmarshal([]byte(input), &fromYAML))
			assert.Equal(t, fromJSON, fromYAML)
		})
	}
}

func TestSetProgramSkipsMalformedAndResets(t *testing.T) {
	b := New()
	b.AppendOperand(100)

	two := 2.0
	op := "±"
	b.SetProgram(Program{
		{Operand: &two},
		{Operand: &two, Operation: &op},
		{},
		OperationRecord(op),
	})

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, -2.0, b.Evaluate(nil, nil).Value)
}

func TestRecordElement(t *testing.T) {
	el, ok := VariableRecord("M").Element()
	require.True(t, ok)
	assert.Equal(t, Element{Kind: Variable, Symbol: "M"}, el)

	_, ok = Record{}.Element()
	assert.False(t, ok)
}
