/*
 * @module api/routes
 * @description API route configuration: registers middleware and every HTTP
 *              endpoint of the quality validation service
 * @architecture RESTful API architecture
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Stateless HTTP request handling
 * @rules RESTful conventions with unified response envelopes
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"geoquality-service/api/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute registers all API routes on the router.
func InitRoute(r *chi.Mux) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	r.Route("/quality", func(r chi.Router) {
		qualityController := controllers.NewQualityController()

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", qualityController.TriggerRun)
			r.Get("/latest", qualityController.GetLastRun)
		})

		r.Get("/rules", qualityController.GetRules)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/records", qualityController.GetRecordReports)
			r.Get("/records/{id}", qualityController.GetRecordReport)
			r.Get("/groups", qualityController.GetGroupReports)
			r.Get("/summary", qualityController.GetSummary)
		})

		r.Get("/metadata", qualityController.GetMetadata)
		r.Get("/changelog", qualityController.GetChangelog)
	})
}
