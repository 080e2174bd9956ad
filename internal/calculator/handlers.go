package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"calculat0r-api/internal/brain"
	"calculat0r-api/internal/handlers"
	"calculat0r-api/internal/observability"
	"calculat0r-api/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var validate = validator.New()

// Handler serves the calculator endpoints.
type Handler struct {
	sessions *session.Manager
	format   brain.Formatter
}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		sessions: sessions,
		format:   brain.DecimalFormatter(),
	}
}

// requestError is a client mistake reported with status 400.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string { return e.msg + ": " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

var errPending = errors.New("result is pending")

// fail maps err to a status and records it.
func fail(w http.ResponseWriter, r *http.Request, span trace.Span, logger *zap.Logger, opName string, err error) {
	ctx := r.Context()

	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		observability.RecordError(ctx, span, logger, errorCounter, opName, reqErr.msg, err, http.StatusBadRequest, w)
	case errors.Is(err, session.ErrNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
	case errors.Is(err, errPending):
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusConflict, w)
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
	}
}

// decodeBody decodes and validates a JSON request body.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return badRequest("invalid request", err)
	}
	return nil
}

// evaluate replays b and records metrics, span attributes and an advisory
// event when one is raised.
func (h *Handler) evaluate(r *http.Request, span trace.Span, opName string, b *brain.Brain, vars map[string]float64) brain.Result {
	ctx := r.Context()

	start := time.Now()
	res := b.Evaluate(vars, h.format)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	historyLength.Record(ctx, int64(b.Len()), attrs)

	span.SetAttributes(
		attribute.Int("calculator.history.length", b.Len()),
		attribute.Bool("calculator.pending", res.Pending),
		attribute.String("calculator.description", res.Description),
	)

	if res.HasError() {
		advisoryCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", opName),
			attribute.String("advisory", res.Error),
		))
		span.AddEvent("calculator.advisory", trace.WithAttributes(
			attribute.String("message", res.Error),
		))
	}

	if res.Finite() {
		resultGauge.Record(ctx, res.Value, attrs)
		span.SetAttributes(attribute.Float64("calculator.result", res.Value))
	}

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	return res
}

// ---------------------------------------------------------------------------
// Handlers: binary shortcuts
// ---------------------------------------------------------------------------

// binaryOp handles POST /calculator/{opName}: it replays "a symbol b =" on a
// fresh brain and returns the evaluation, advisory included.
func (h *Handler) binaryOp(opName, symbol string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := observability.LoggerWithTrace(ctx)
		requestID := observability.RequestIDFromContext(ctx)

		ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
			trace.WithAttributes(
				attribute.String("calculator.operation", opName),
				attribute.String("request.id", requestID),
			),
		)
		defer span.End()
		r = r.WithContext(ctx)

		var req CalcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
			return
		}

		if math.IsNaN(req.A) || math.IsInf(req.A, 0) || math.IsNaN(req.B) || math.IsInf(req.B, 0) {
			observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid numeric input", fmt.Errorf("a=%g b=%g", req.A, req.B), http.StatusBadRequest, w)
			return
		}

		span.SetAttributes(
			attribute.Float64("calculator.operand.a", req.A),
			attribute.Float64("calculator.operand.b", req.B),
		)

		b := brain.New()
		b.AppendOperand(req.A)
		b.AppendOperation(symbol)
		b.AppendOperand(req.B)
		b.AppendOperation("=")
		res := h.evaluate(r, span, opName, b, nil)

		logger.Info("calculator operation completed",
			zap.String("operation", opName),
			zap.Float64("a", req.A),
			zap.Float64("b", req.B),
			zap.String("description", res.Description),
			zap.String("advisory", res.Error),
			zap.String("request_id", requestID),
		)

		handlers.WriteJSON(w, http.StatusOK, CalcResponse{
			Operation:  opName,
			A:          req.A,
			B:          req.B,
			Evaluation: newEvaluation(res, h.format),
		})
	}
}

// ---------------------------------------------------------------------------
// Handler: stateless replay
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate: it replays a whole program
// against the supplied variables without touching any session.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()
	r = r.WithContext(ctx)

	var req EvaluateRequest
	if err := decodeBody(r, &req); err != nil {
		fail(w, r, span, logger, "evaluate", err)
		return
	}

	b := brain.New()
	b.SetProgram(req.Program)
	res := h.evaluate(r, span, "evaluate", b, req.Variables)

	logger.Info("program evaluated",
		zap.Int("records", len(req.Program)),
		zap.Int("elements", b.Len()),
		zap.String("description", res.Description),
		zap.Bool("pending", res.Pending),
		zap.String("advisory", res.Error),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, newEvaluation(res, h.format))
}
