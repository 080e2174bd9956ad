// Package brain is the calculator's expression engine. It records keypad
// input as an append-only history and replays the whole history on every
// evaluation to produce the displayed value, the pending flag, a readable
// description and the first domain advisory raised along the way.
//
// A Brain is not safe for concurrent use.
package brain

import (
	"math"
	"math/rand/v2"
	"strconv"
)

// Kind tags the payload carried by an Element.
type Kind int

const (
	Operand Kind = iota
	Operation
	Variable
)

func (k Kind) String() string {
	switch k {
	case Operand:
		return "operand"
	case Operation:
		return "operation"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// Element is one recorded input. Value is set for operands; Symbol holds the
// operation symbol or the variable name.
type Element struct {
	Kind   Kind
	Value  float64
	Symbol string
}

// Formatter renders an operand for use in descriptions.
type Formatter func(float64) string

// DefaultFormatter prints the shortest representation that round-trips.
func DefaultFormatter(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Brain owns a history of input elements.
type Brain struct {
	history []Element
	random  func() float64
}

// Option configures a Brain.
type Option func(*Brain)

// WithRandom replaces the source used by the "?" key. fn must return values
// in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(b *Brain) {
		b.random = fn
	}
}

func New(opts ...Option) *Brain {
	b := &Brain{random: rand.Float64}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Brain) AppendOperand(v float64) {
	b.history = append(b.history, Element{Kind: Operand, Value: v})
}

func (b *Brain) AppendOperation(symbol string) {
	b.history = append(b.history, Element{Kind: Operation, Symbol: symbol})
}

func (b *Brain) AppendVariable(name string) {
	b.history = append(b.history, Element{Kind: Variable, Symbol: name})
}

// Undo drops the most recent element. It is a no-op on an empty history.
func (b *Brain) Undo() {
	if len(b.history) > 0 {
		b.history = b.history[:len(b.history)-1]
	}
}

func (b *Brain) Reset() {
	b.history = nil
}

func (b *Brain) Len() int {
	return len(b.history)
}

// History returns a copy of the recorded elements.
func (b *Brain) History() []Element {
	out := make([]Element, len(b.history))
	copy(out, b.history)
	return out
}

// Result is the outcome of one replay.
type Result struct {
	// Value is meaningful only when HasValue is set.
	Value       float64
	HasValue    bool
	Pending     bool
	Description string
	// Error holds the first advisory raised during the replay, or "".
	Error string
}

// HasError reports whether an advisory was raised.
func (r Result) HasError() bool {
	return r.Error != ""
}

// Caption is the description as a keypad display shows it: suffixed with an
// ellipsis while an operation is pending and with "=" otherwise.
func (r Result) Caption() string {
	if r.Pending {
		return r.Description + "…"
	}
	return r.Description + "="
}

// Finite reports whether the result holds a finite number.
func (r Result) Finite() bool {
	return r.HasValue && !math.IsNaN(r.Value) && !math.IsInf(r.Value, 0)
}

type accumulator struct {
	value       float64
	description string
}

type pendingBinary struct {
	op     operation
	symbol string
	first  accumulator
}

func (p *pendingBinary) description() string {
	return p.first.description + p.symbol
}

func (p *pendingBinary) perform(second accumulator) (accumulator, string) {
	next := accumulator{
		value:       p.op.binary(p.first.value, second.value),
		description: p.description() + second.description,
	}
	if p.op.checkBinary == nil {
		return next, ""
	}
	return next, p.op.checkBinary(p.first.value, second.value)
}

// replay is the transient state of a single Evaluate call.
type replay struct {
	acc     *accumulator
	pending *pendingBinary
	err     string
	random  func() float64
}

func (r *replay) advise(msg string) {
	if r.err == "" {
		r.err = msg
	}
}

func (r *replay) resolvePending() {
	next, msg := r.pending.perform(*r.acc)
	r.acc = &next
	r.advise(msg)
}

func (r *replay) apply(symbol string) {
	op, ok := operations[symbol]
	if !ok {
		return
	}

	switch op.kind {
	case opConstant:
		r.acc = &accumulator{value: op.value, description: symbol}
	case opUnary:
		if r.acc == nil {
			return
		}
		if op.checkUnary != nil {
			r.advise(op.checkUnary(r.acc.value))
		}
		r.acc = &accumulator{
			value:       op.unary(r.acc.value),
			description: symbol + "(" + r.acc.description + ")",
		}
	case opBinary:
		if r.acc == nil {
			return
		}
		if r.pending != nil {
			r.resolvePending()
		}
		r.pending = &pendingBinary{op: op, symbol: symbol, first: *r.acc}
		r.acc = nil
	case opEquals:
		if r.acc != nil && r.pending != nil {
			r.resolvePending()
			r.pending = nil
		}
	case opRandom:
		r.acc = &accumulator{value: r.random(), description: "rand"}
	}
}

// Evaluate replays the full history. Variables missing from vars bind to 0.
// A nil format falls back to DefaultFormatter.
func (b *Brain) Evaluate(vars map[string]float64, format Formatter) Result {
	if format == nil {
		format = DefaultFormatter
	}

	r := replay{random: b.random}
	for _, el := range b.history {
		switch el.Kind {
		case Operand:
			r.acc = &accumulator{value: el.Value, description: format(el.Value)}
		case Variable:
			r.acc = &accumulator{value: vars[el.Symbol], description: el.Symbol}
		case Operation:
			r.apply(el.Symbol)
		}
	}

	var res Result
	if r.pending != nil {
		res.Pending = true
		res.Description = r.pending.description()
	}
	if r.acc != nil {
		res.Value = r.acc.value
		res.HasValue = true
		res.Description += r.acc.description
	}
	res.Error = r.err
	return res
}

// Func returns the history as a function of one variable, with the other
// bindings taken from vars. The function yields NaN when the history has no
// value. It shares a binding map across calls and must not be called
// concurrently.
func (b *Brain) Func(variable string, vars map[string]float64) func(float64) float64 {
	bound := make(map[string]float64, len(vars)+1)
	for k, v := range vars {
		bound[k] = v
	}
	return func(x float64) float64 {
		bound[variable] = x
		res := b.Evaluate(bound, nil)
		if !res.HasValue {
			return math.NaN()
		}
		return res.Value
	}
}
