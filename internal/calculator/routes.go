package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/add", h.binaryOp("add", "+"))
		r.Post("/subtract", h.binaryOp("subtract", "−"))
		r.Post("/multiply", h.binaryOp("multiply", "×"))
		r.Post("/divide", h.binaryOp("divide", "÷"))
		r.Post("/power", h.binaryOp("power", "^"))
		r.Post("/evaluate", h.Evaluate)
		r.Get("/symbols", Symbols)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)
			r.Get("/", h.ListSessions)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Post("/operand", h.mutate("operand", appendOperand))
				r.Post("/operation", h.mutate("operation", appendOperation))
				r.Post("/variable", h.mutate("variable", appendVariable))
				r.Post("/undo", h.mutate("undo", undo))
				r.Post("/reset", h.mutate("reset", reset))
				r.Put("/variables/{name}", h.mutate("bind", bindVariable))
				r.Get("/program", h.ExportProgram)
				r.Put("/program", h.mutate("program.import", importProgram))
				r.Put("/viewport", h.mutate("viewport", adjustViewport))
				r.Get("/graph", h.Graph)
			})
		})
	})
}
