package calculator

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"calculat0r-api/internal/brain"
	"calculat0r-api/internal/graph"
	"calculat0r-api/internal/handlers"
	"calculat0r-api/internal/observability"
	"calculat0r-api/internal/session"
)

// begin opens the span for a session endpoint and returns the request bound
// to it.
func begin(r *http.Request, opName string) (*http.Request, trace.Span, *zap.Logger) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("session.id", chi.URLParam(r, "id")),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	return r.WithContext(ctx), span, logger
}

func (h *Handler) sessionResponse(r *http.Request, span trace.Span, opName string, s *session.Session) SessionResponse {
	res := h.evaluate(r, span, opName, s.Brain, s.Variables)
	return SessionResponse{
		ID:         s.ID,
		Length:     s.Brain.Len(),
		Variables:  s.Variables,
		Viewport:   s.Viewport.Normalize(),
		Evaluation: newEvaluation(res, h.format),
	}
}

// mutation turns a request into a change applied to one session.
type mutation func(r *http.Request) (func(*session.Session) error, error)

// mutate handles an endpoint that changes a session and answers with the
// session's new evaluation.
func (h *Handler) mutate(opName string, build mutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, span, logger := begin(r, opName)
		defer span.End()

		change, err := build(r)
		if err != nil {
			fail(w, r, span, logger, opName, err)
			return
		}

		id := chi.URLParam(r, "id")
		s, err := h.sessions.Update(r.Context(), id, change)
		if err != nil {
			fail(w, r, span, logger, opName, err)
			return
		}

		resp := h.sessionResponse(r, span, opName, s)

		logger.Info("session updated",
			zap.String("operation", opName),
			zap.String("session_id", id),
			zap.Int("length", resp.Length),
			zap.String("description", resp.Description),
			zap.String("advisory", resp.ErrorMessage),
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)

		handlers.WriteJSON(w, http.StatusOK, resp)
	}
}

// CreateSession handles POST /calculator/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r, span, logger := begin(r, "create")
	defer span.End()

	s, err := h.sessions.Create(r.Context())
	if err != nil {
		fail(w, r, span, logger, "create", err)
		return
	}
	span.SetAttributes(attribute.String("session.id", s.ID))

	logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
	)

	handlers.WriteJSON(w, http.StatusCreated, h.sessionResponse(r, span, "create", s))
}

// ListSessions handles GET /calculator/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	r, span, logger := begin(r, "list")
	defer span.End()

	ids, err := h.sessions.List(r.Context())
	if err != nil {
		fail(w, r, span, logger, "list", err)
		return
	}
	span.SetAttributes(attribute.Int("session.count", len(ids)))

	handlers.WriteJSON(w, http.StatusOK, SessionListResponse{Sessions: ids})
}

// GetSession handles GET /calculator/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	r, span, logger := begin(r, "get")
	defer span.End()

	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, span, logger, "get", err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, h.sessionResponse(r, span, "get", s))
}

// DeleteSession handles DELETE /calculator/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	r, span, logger := begin(r, "delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		fail(w, r, span, logger, "delete", err)
		return
	}

	logger.Info("session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
	)

	w.WriteHeader(http.StatusNoContent)
}

func appendOperand(r *http.Request) (func(*session.Session) error, error) {
	var req OperandRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return func(s *session.Session) error {
		s.Brain.AppendOperand(*req.Value)
		return nil
	}, nil
}

func appendOperation(r *http.Request) (func(*session.Session) error, error) {
	var req OperationRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	// Unknown symbols are recorded and ignored by the replay.
	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("calculator.symbol", req.Symbol),
		attribute.Bool("calculator.symbol.known", brain.IsOperation(req.Symbol)),
	)
	return func(s *session.Session) error {
		s.Brain.AppendOperation(req.Symbol)
		return nil
	}, nil
}

func appendVariable(r *http.Request) (func(*session.Session) error, error) {
	var req VariableRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return func(s *session.Session) error {
		s.Brain.AppendVariable(req.Name)
		return nil
	}, nil
}

func undo(*http.Request) (func(*session.Session) error, error) {
	return func(s *session.Session) error {
		s.Brain.Undo()
		return nil
	}, nil
}

// reset clears the history and the variable bindings, like the keypad's
// clear key.
func reset(*http.Request) (func(*session.Session) error, error) {
	return func(s *session.Session) error {
		s.Brain.Reset()
		clear(s.Variables)
		return nil
	}, nil
}

func bindVariable(r *http.Request) (func(*session.Session) error, error) {
	var req BindRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	name := chi.URLParam(r, "name")
	return func(s *session.Session) error {
		s.SetVariable(name, *req.Value)
		return nil
	}, nil
}

func importProgram(r *http.Request) (func(*session.Session) error, error) {
	var req ProgramBody
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return func(s *session.Session) error {
		s.Brain.SetProgram(req.Program)
		return nil
	}, nil
}

func adjustViewport(r *http.Request) (func(*session.Session) error, error) {
	var req ViewportRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return func(s *session.Session) error {
		if req.Reset {
			s.Viewport = graph.DefaultViewport()
		}
		if req.Zoom != nil {
			s.Viewport.Zoom(*req.Zoom)
		}
		s.Viewport.Pan(req.PanX, req.PanY)
		if req.Origin != nil {
			s.Viewport.MoveOrigin(*req.Origin, *req.Bounds)
		}
		return nil
	}, nil
}

// ExportProgram handles GET /calculator/sessions/{id}/program.
func (h *Handler) ExportProgram(w http.ResponseWriter, r *http.Request) {
	r, span, logger := begin(r, "program.export")
	defer span.End()

	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, span, logger, "program.export", err)
		return
	}

	prog := s.Brain.Program()
	span.SetAttributes(attribute.Int("calculator.program.records", len(prog)))

	handlers.WriteJSON(w, http.StatusOK, ProgramBody{Program: prog})
}

// plotQuery reads the graph query parameters.
func plotQuery(r *http.Request) (graph.PlotRequest, string, error) {
	q := r.URL.Query()

	num := func(key string, def float64) (float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, badRequest("invalid query parameter "+key, err)
		}
		return v, nil
	}

	var (
		req graph.PlotRequest
		err error
	)
	if req.Bounds.Width, err = num("width", 320); err != nil {
		return req, "", err
	}
	if req.Bounds.Height, err = num("height", 480); err != nil {
		return req, "", err
	}
	if req.Density, err = num("density", 1); err != nil {
		return req, "", err
	}
	if err := req.Validate(); err != nil {
		return req, "", badRequest("invalid graph request", err)
	}

	variable := q.Get("variable")
	if variable == "" {
		variable = session.MemoryVariable
	}
	return req, variable, nil
}

// Graph handles GET /calculator/sessions/{id}/graph: the session's history
// plotted as a function of one variable.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	r, span, logger := begin(r, "graph")
	defer span.End()

	req, variable, err := plotQuery(r)
	if err != nil {
		fail(w, r, span, logger, "graph", err)
		return
	}

	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, span, logger, "graph", err)
		return
	}

	res := h.evaluate(r, span, "graph", s.Brain, s.Variables)
	if res.Pending {
		fail(w, r, span, logger, "graph", errPending)
		return
	}

	resp := GraphResponse{
		Title:    "No Function",
		Segments: []graph.Segment{},
		Viewport: s.Viewport.Normalize(),
	}
	if res.HasValue {
		segs, err := plot(r.Context(), s, variable, req)
		if err != nil {
			fail(w, r, span, logger, "graph", badRequest("invalid graph request", err))
			return
		}
		resp.Title = fmt.Sprintf("y(%s)=%s", variable, res.Description)
		if segs != nil {
			resp.Segments = segs
		}
	}

	span.SetAttributes(
		attribute.String("graph.variable", variable),
		attribute.Int("graph.segments", len(resp.Segments)),
	)

	logger.Info("graph plotted",
		zap.String("session_id", s.ID),
		zap.String("variable", variable),
		zap.Int("segments", len(resp.Segments)),
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

func plot(ctx context.Context, s *session.Session, variable string, req graph.PlotRequest) ([]graph.Segment, error) {
	_, span := tracer.Start(ctx, "calculator.graph.plot",
		trace.WithAttributes(
			attribute.Float64("graph.width", req.Bounds.Width),
			attribute.Float64("graph.density", req.Density),
		),
	)
	defer span.End()

	return s.Viewport.Plot(s.Brain.Func(variable, s.Variables), req)
}

// Symbols handles GET /calculator/symbols.
func Symbols(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string][]string{
		"symbols": brain.Symbols(),
	})
}
