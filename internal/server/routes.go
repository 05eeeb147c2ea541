package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/replan-systems/replan/internal/server/handlers"
)

// routeHealth is the mounted health probe path, exempt from API-key auth.
const routeHealth = "/api/health"

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.orch, s.provider)

	r.Route("/api", func(r chi.Router) {
		// Health
		r.Get("/health", h.Health)

		// Plans
		r.Get("/plans", h.ListPlans)
		r.Post("/plans", h.CreatePlan)
		r.Get("/plans/{planID}", h.GetPlan)
		r.Delete("/plans/{planID}", h.DeletePlan)
		r.Post("/plans/{planID}/run", h.RunPlan)
		r.Post("/plans/{planID}/archive", h.ArchivePlan)

		// Run output
		r.Get("/plans/{planID}/trajectory", h.ListTrajectory)
		r.Get("/plans/{planID}/recommendations", h.ListRecommendations)
		r.Get("/plans/{planID}/exceptions", h.ListExceptions)
		r.Get("/plans/{planID}/events", h.ListEvents)

		// Recommendation workflow
		r.Get("/recommendations/{recID}", h.GetRecommendation)
		r.Post("/recommendations/{recID}/approve", h.ApproveRecommendation)
		r.Post("/recommendations/{recID}/reject", h.RejectRecommendation)
		r.Post("/recommendations/{recID}/modify", h.ModifyRecommendation)
		r.Post("/recommendations/{recID}/convert", h.ConvertRecommendation)

		// Exception workflow
		r.Get("/exceptions/{excID}", h.GetException)
		r.Post("/exceptions/{excID}/resolve", h.ResolveException)

		// Policies
		r.Get("/policies", h.ListPolicies)
		r.Post("/policies", h.PutPolicy)
		r.Get("/policies/{product}/{location}", h.GetPolicy)
	})
}
