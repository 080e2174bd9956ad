package calculator

import (
	"calculat0r-api/internal/brain"
	"calculat0r-api/internal/graph"
)

// CalcRequest is the JSON body for the binary shortcuts (add, subtract,
// multiply, divide, power).
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for the binary shortcuts.
type CalcResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Evaluation
}

// Evaluation is the JSON form of brain.Result. Result is omitted when the
// value is missing or not finite; Value always carries the formatted number.
type Evaluation struct {
	Result       *float64 `json:"result,omitempty"`
	Value        string   `json:"value,omitempty"`
	Pending      bool     `json:"pending"`
	Description  string   `json:"description"`
	Caption      string   `json:"caption"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

func newEvaluation(res brain.Result, format brain.Formatter) Evaluation {
	ev := Evaluation{
		Pending:      res.Pending,
		Description:  res.Description,
		Caption:      res.Caption(),
		ErrorMessage: res.Error,
	}
	if res.HasValue {
		ev.Value = format(res.Value)
	}
	if res.Finite() {
		v := res.Value
		ev.Result = &v
	}
	return ev
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Program   brain.Program      `json:"program"`
	Variables map[string]float64 `json:"variables,omitempty"`
}

// SessionResponse describes a session and its current evaluation.
type SessionResponse struct {
	ID        string             `json:"id"`
	Length    int                `json:"length"`
	Variables map[string]float64 `json:"variables"`
	Viewport  graph.Viewport     `json:"viewport"`
	Evaluation
}

type SessionListResponse struct {
	Sessions []string `json:"sessions"`
}

type OperandRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type OperationRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

type VariableRequest struct {
	Name string `json:"name" validate:"required"`
}

// BindRequest is the JSON body for PUT /calculator/sessions/{id}/variables/{name}.
type BindRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type ProgramBody struct {
	Program brain.Program `json:"program"`
}

// ViewportRequest adjusts a session's graph viewport. Adjustments apply in
// order: reset, zoom, pan, then origin.
type ViewportRequest struct {
	Reset  bool         `json:"reset,omitempty"`
	Zoom   *float64     `json:"zoom,omitempty" validate:"omitempty,gt=0"`
	PanX   float64      `json:"pan_x,omitempty"`
	PanY   float64      `json:"pan_y,omitempty"`
	Origin *graph.Point `json:"origin,omitempty"`
	Bounds *graph.Size  `json:"bounds,omitempty" validate:"required_with=Origin"`
}

// GraphResponse is the JSON response for GET /calculator/sessions/{id}/graph.
type GraphResponse struct {
	Title    string          `json:"title"`
	Segments []graph.Segment `json:"segments"`
	Viewport graph.Viewport  `json:"viewport"`
}
