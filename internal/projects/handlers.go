package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"projectadmin/internal/amenities"
	"projectadmin/internal/archive"
	"projectadmin/internal/events"
	"projectadmin/internal/logging"
	"projectadmin/internal/metrics"
	"projectadmin/internal/reconcile"
	"projectadmin/internal/storage"
)

const maxBodyBytes = 2 << 20

// Handler bundles dependencies for project endpoints. Only Store is required.
type Handler struct {
	Store    storage.Store
	Archiver archive.Archiver
	Catalog  *amenities.Catalog
	Events   *events.Broker
	Metrics  *metrics.Recorder
	Log      logging.Logger
}

// CreateProjectRequest describes inbound payload for creating a project.
type CreateProjectRequest struct {
	Name   string          `json:"name"`
	NameHe string          `json:"nameHe"`
	Data   json.RawMessage `json:"data"`
}

// EditResponse is returned by Edit.
type EditResponse struct {
	Project storage.Project     `json:"project"`
	State   reconcile.EditState `json:"state"`
}

// UpdateResponse is returned by Update.
type UpdateResponse struct {
	Project storage.Project  `json:"project"`
	Report  reconcile.Report `json:"report"`
}

// RepairResponse is returned by Repair.
type RepairResponse struct {
	Project  storage.Project   `json:"project"`
	Changed  []reconcile.Group `json:"changed"`
	Archived []string          `json:"archived"`
}

// List handles GET /api/projects.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Create handles POST /api/projects.
func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.NameHe = strings.TrimSpace(req.NameHe)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if len(req.Data) > 0 {
		if _, err := parseDocument(req.Data); err != nil {
			http.Error(w, "data must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	project, err := h.Store.CreateProject(r.Context(), storage.Project{
		Name:   req.Name,
		NameHe: req.NameHe,
		Data:   req.Data,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(events.Event{ProjectID: project.ID, Action: events.ActionCreated})
	writeJSON(w, http.StatusCreated, project)
}

// Get handles GET /api/projects/{id}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.Store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Edit handles GET /api/projects/{id}/edit. It returns the editable state the
// UI works on; nothing is written.
func (h Handler) Edit(w http.ResponseWriter, r *http.Request) {
	project, doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	state, _ := h.reconciler(nil).Load(doc)
	writeJSON(w, http.StatusOK, EditResponse{Project: project, State: state})
}

// Update handles PUT /api/projects/{id}. The snapshot the edit is reconciled
// against is the record as stored now.
func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	var state reconcile.EditState
	if err := decodeBody(w, r, &state); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	project, doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}

	drift := &driftCollector{next: h.driftReporter()}
	_, session := h.reconciler(drift).Load(doc)
	saved, report := session.Save(state)
	h.logDrift(r.Context(), project.ID, drift)

	data, err := json.Marshal(saved)
	if err != nil {
		h.fail(w, r, fmt.Errorf("encode document: %w", err))
		return
	}
	project, err = h.Store.UpdateProjectData(r.Context(), project.ID, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.ObserveSave(report)
	}
	h.logger().Info(r.Context(), "project saved", reportArgs(project.ID, report)...)
	h.publish(events.Event{ProjectID: project.ID, Action: events.ActionSaved, Decisions: decisions(report)})
	writeJSON(w, http.StatusOK, UpdateResponse{Project: project, Report: report})
}

// Repair handles POST /api/projects/{id}/repair. Every value it rewrites is
// archived first; if archiving fails nothing is written.
func (h Handler) Repair(w http.ResponseWriter, r *http.Request) {
	drift := &driftCollector{next: h.driftReporter()}
	outcome, err := RepairProject(r.Context(), h.Store, h.Archiver, h.reconciler(drift), chi.URLParam(r, "id"), reconcile.RepairOptions{
		PaymentPlans: r.URL.Query().Get("plans") == "true",
	}, true)
	h.logDrift(r.Context(), outcome.Project.ID, drift)
	switch {
	case errors.Is(err, archive.ErrArchiveDisabled):
		h.observeRepair(metrics.RepairFailed)
		http.Error(w, "archive not configured; refusing to rewrite", http.StatusConflict)
		return
	case errors.Is(err, storage.ErrNotFound):
		h.fail(w, r, err)
		return
	case err != nil:
		h.observeRepair(metrics.RepairFailed)
		h.fail(w, r, err)
		return
	}

	resp := RepairResponse{Project: outcome.Project, Changed: []reconcile.Group{}, Archived: []string{}}
	if len(outcome.Changes) == 0 {
		h.observeRepair(metrics.RepairUnchanged)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	for _, c := range outcome.Changes {
		resp.Changed = append(resp.Changed, c.Group)
	}
	resp.Archived = append(resp.Archived, outcome.Archived...)

	h.observeRepair(metrics.RepairChanged)
	h.logger().Info(r.Context(), "project repaired", "id", outcome.Project.ID, "changed", resp.Changed, "archived", resp.Archived)
	h.publish(events.Event{ProjectID: outcome.Project.ID, Action: events.ActionRepaired})
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/projects/{id}.
func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish(events.Event{ProjectID: id, Action: events.ActionDeleted})
	w.WriteHeader(http.StatusNoContent)
}

// Amenities handles GET /api/amenities with the catalog grouped by category.
func (h Handler) Amenities(w http.ResponseWriter, _ *http.Request) {
	catalog := h.Catalog
	if catalog == nil {
		catalog = amenities.Default()
	}
	writeJSON(w, http.StatusOK, catalog.Grouped())
}

func (h Handler) loadDocument(w http.ResponseWriter, r *http.Request) (storage.Project, reconcile.Document, bool) {
	project, err := h.Store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return storage.Project{}, nil, false
	}
	doc, err := parseDocument(project.Data)
	if err != nil {
		h.fail(w, r, fmt.Errorf("project %s: %w", project.ID, err))
		return storage.Project{}, nil, false
	}
	return project, doc, true
}

func (h Handler) reconciler(drift amenities.DriftReporter) reconcile.Reconciler {
	return reconcile.Reconciler{Codec: amenities.Codec{Catalog: h.Catalog, Drift: drift}}
}

func (h Handler) driftReporter() amenities.DriftReporter {
	if h.Metrics == nil {
		return nil
	}
	return h.Metrics
}

func (h Handler) logDrift(ctx context.Context, projectID string, drift *driftCollector) {
	if len(drift.ids) > 0 {
		h.logger().Warn(ctx, "dropped amenity ids missing from catalog", "id", projectID, "dropped", drift.ids)
	}
}

func (h Handler) observeRepair(outcome string) {
	if h.Metrics != nil {
		h.Metrics.ObserveRepair(outcome)
	}
}

func (h Handler) publish(evt events.Event) {
	if h.Events != nil {
		h.Events.Publish(evt)
	}
}

func (h Handler) logger() logging.Logger {
	if h.Log == nil {
		return logging.Nop()
	}
	return h.Log
}

// fail maps err to a status code: not found is 404, everything else 500.
func (h Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	h.logger().Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// driftCollector keeps the ids a codec dropped during one request.
type driftCollector struct {
	ids  []amenities.SelectionID
	next amenities.DriftReporter
}

func (d *driftCollector) ReportDrift(ids []amenities.SelectionID) {
	d.ids = append(d.ids, ids...)
	if d.next != nil {
		d.next.ReportDrift(ids)
	}
}

var errNotObject = errors.New("document is not a JSON object")

func parseDocument(data json.RawMessage) (reconcile.Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return reconcile.Document{}, nil
	}
	var doc reconcile.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotObject, err)
	}
	if doc == nil {
		return reconcile.Document{}, nil
	}
	return doc, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decisions(report reconcile.Report) map[string]string {
	out := make(map[string]string, len(report))
	for g, d := range report {
		out[string(g)] = string(d)
	}
	return out
}

func reportArgs(id string, report reconcile.Report) []any {
	args := []any{"id", id}
	for _, g := range reconcile.Groups {
		args = append(args, string(g), string(report[g]))
	}
	return args
}
