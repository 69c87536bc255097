/*
 * @module api/controllers/quality_controller
 * @description Quality validation controller: triggers validation runs and
 *              serves the rule catalog, report tiers, changelog and metadata
 * @architecture MVC architecture - controller layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Request received -> service call -> unified response envelope
 * @rules Read endpoints serve persisted documents; only the run endpoint
 *        mutates state
 * @dependencies net/http, github.com/go-chi/render
 * @refs service/quality_service.go, api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"geoquality-service/service"
)

// QualityController exposes the validation engine over HTTP.
type QualityController struct {
	service *service.QualityService
}

// NewQualityController creates a quality controller backed by the
// global quality service.
func NewQualityController() *QualityController {
	return &QualityController{service: service.GlobalQualityService}
}

// TriggerRun runs a validation pass
// @Summary Trigger a validation run
// @Description Loads the configured source, validates every record and persists the reports
// @Tags quality
// @Produce json
// @Success 200 {object} APIResponse{data=service.RunOutcome}
// @Failure 409 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /quality/runs [post]
func (c *QualityController) TriggerRun(w http.ResponseWriter, r *http.Request) {
	outcome, err := c.service.RunValidation(r.Context())
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "validation run failed: " + err.Error()})
		return
	}
	render.JSON(w, r, &APIResponse{Status: 0, Msg: "validation run complete", Data: outcome})
}

// GetLastRun returns the most recent run outcome
// @Summary Get the latest run outcome
// @Tags quality
// @Produce json
// @Success 200 {object} APIResponse{data=service.RunOutcome}
// @Failure 404 {object} APIResponse
// @Router /quality/runs/latest [get]
func (c *QualityController) GetLastRun(w http.ResponseWriter, r *http.Request) {
	outcome := c.service.LastRun()
	if outcome == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "no validation run has completed yet"})
		return
	}
	render.JSON(w, r, &APIResponse{Status: 0, Msg: "success", Data: outcome})
}

// GetRules lists the rule catalog
// @Summary List the validation rule catalog
// @Description Returns every rule with its ID, dimension, severity and description
// @Tags quality
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ValidationRule}
// @Router /quality/rules [get]
func (c *QualityController) GetRules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, &APIResponse{
		Status: 0,
		Msg:    "success",
		Data:   c.service.Validator().Catalog().Rules(),
	})
}

// GetRecordReports pages the record-level reports
// @Summary List record-level reports
// @Description Pages stored record reports, optionally filtered by group and priority
// @Tags quality
// @Produce json
// @Param page query int false "page number" default(1)
// @Param size query int false "page size" default(20)
// @Param group query string false "organizational unit"
// @Param priority query string false "priority tier" Enums(P0,P1,P2,P3)
// @Success 200 {object} PaginatedResponse{data=[]models.RecordReportDocument}
// @Failure 500 {object} APIResponse
// @Router /quality/reports/records [get]
func (c *QualityController) GetRecordReports(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	group := r.URL.Query().Get("group")
	priority := r.URL.Query().Get("priority")

	docs, total, err := c.service.Documents().ListRecordReports(group, priority, page, size)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: err.Error()})
		return
	}
	render.JSON(w, r, &PaginatedResponse{
		Status: 0, Msg: "success", Data: docs, Total: total, Page: page, Size: size,
	})
}

// GetGroupReports lists the group-level reports
// @Summary List group-level reports
// @Description Returns one report per organizational unit, worst score first
// @Tags quality
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.GroupReportDocument}
// @Failure 500 {object} APIResponse
// @Router /quality/reports/groups [get]
func (c *QualityController) GetGroupReports(w http.ResponseWriter, r *http.Request) {
	docs, err := c.service.Documents().ListGroupReports()
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: err.Error()})
		return
	}
	render.JSON(w, r, &APIResponse{Status: 0, Msg: "success", Data: docs})
}

// GetSummary returns the latest summary report
// @Summary Get the summary report
// @Description Serves the cached summary when available, falling back to the database
// @Tags quality
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /quality/reports/summary [get]
func (c *QualityController) GetSummary(w http.ResponseWriter, r *http.Request) {
	if cache := c.service.Cache(); cache != nil {
		if summary, found, err := cache.LatestSummary(r.Context()); err == nil && found {
			render.JSON(w, r, &APIResponse{Status: 0, Msg: "success", Data: summary})
			return
		}
	}

	doc, err := c.service.Documents().LatestSummary()
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: err.Error()})
		return
	}
	if doc == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "no summary report available yet"})
		return
	}
	render.JSON(w, r, &APIResponse{Status: 0, Msg: "success", Data: doc})
}

// GetMetadata returns the UI filter metadata of the latest run
// @Summary Get categorical filter metadata
// @Description Distinct values, numeric ranges and the severity color palette for UI filters
// @Tags quality
// @Produce json
// @Success 200 {object} APIResponse{data=models.CategoricalMetadata}
// @Failure 404 {object} APIResponse
// @Router /quality/metadata [get]
func (c *QualityController) GetMetadata(w http.ResponseWriter, r *http.Request) {
	if cache := c.service.Cache(); cache != nil {
		if metadata, found, err := cache.LatestMetadata(r.Context()); err == nil && found {
			render.JSON(w, r, &APIResponse{Status: 0, Msg: "success", Data: metadata})
			return
		}
	}
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, &APIResponse{Status: 1, Msg: "no run metadata available yet"})
}

// GetChangelog pages the report changelog
// @Summary List changelog entries
// @Description Pages the append-only report changelog, newest first
// @Tags quality
// @Produce json
// @Param page query int false "page number" default(1)
// @Param size query int false "page size" default(20)
// @Param document_id query string false "filter by document"
// @Success 200 {object} PaginatedResponse{data=[]models.ChangelogEntry}
// @Failure 500 {object} APIResponse
// @Router /quality/changelog [get]
func (c *QualityController) GetChangelog(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	documentID := r.URL.Query().Get("document_id")

	entries, total, err := c.service.Documents().ListChangelog(documentID, page, size)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: err.Error()})
		return
	}
	render.JSON(w, r, &PaginatedResponse{
		Status: 0, Msg: "success", Data: entries, Total: total, Page: page, Size: size,
	})
}

// GetRecordReport returns one record report by its natural key
// @Summary Get one record report
// @Tags quality
// @Produce json
// @Param id path string true "record identifier (BPIN)"
// @Success 200 {object} APIResponse{data=models.RecordReportDocument}
// @Failure 404 {object} APIResponse
// @Router /quality/reports/records/{id} [get]
func (c *QualityController) GetRecordReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := c.service.Documents().GetRecordReport(id)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: err.Error()})
		return
	}
	if doc == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, &APIResponse{Status: 1, Msg: "record report not found: " + id})
		return
	}
	render.JSON(w, r, &APIResponse{Status: 0, Msg: "success", Data: doc})
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	return page, size
}
