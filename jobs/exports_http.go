package jobs

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// exportResources is the list offered by the export form, in menu order.
var exportResources = []crud.Option{
	{Value: "utilisateurs", Label: "Utilisateurs"},
	{Value: "commandes", Label: "Commandes"},
	{Value: "produits", Label: "Produits"},
	{Value: "ateliers", Label: "Ateliers"},
	{Value: "abonnements", Label: "Abonnements"},
	{Value: "devis", Label: "Devis"},
	{Value: "paiements", Label: "Paiements"},
	{Value: "articles", Label: "Articles"},
}

// JobRow is one line of the exports table.
type JobRow struct {
	Resource   string
	State      string
	StateClass string
	EnqueuedAt string
	File       string

	at time.Time
}

// ExportsView is the page model of /admin/exports.
type ExportsView struct {
	Jobs      []JobRow
	Resources []crud.Option
}

// ExportsHandler serves the export screen: enqueue new exports and show
// queue state next to the files already produced.
type ExportsHandler struct {
	logger    *slog.Logger
	renderer  *view.Renderer
	csrf      *shared.CSRFManager
	client    *Client
	inspector *asynq.Inspector
	dir       string
	audit     crud.Recorder
}

// NewExportsHandler constructs the exports screen handler.
func NewExportsHandler(logger *slog.Logger, renderer *view.Renderer, csrf *shared.CSRFManager, client *Client, inspector *asynq.Inspector, dir string, audit crud.Recorder) *ExportsHandler {
	return &ExportsHandler{logger: logger, renderer: renderer, csrf: csrf, client: client, inspector: inspector, dir: dir, audit: audit}
}

// Routes mounts the exports screen under the admin router.
func (h *ExportsHandler) Routes(r chi.Router) {
	r.Get("/exports", h.Show)
	r.Post("/exports", h.Enqueue)
}

// Show renders the exports page.
func (h *ExportsHandler) Show(w http.ResponseWriter, r *http.Request) {
	page := ExportsView{Resources: exportResources}
	page.Jobs = append(page.Jobs, h.queueRows()...)
	page.Jobs = append(page.Jobs, h.fileRows()...)
	sort.SliceStable(page.Jobs, func(i, j int) bool { return page.Jobs[i].at.After(page.Jobs[j].at) })
	h.renderer.Page(w, r, http.StatusOK, "exports.html", "Exports CSV", page)
}

// Enqueue queues one export and redirects back to the screen.
func (h *ExportsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulaire invalide", http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if err := h.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err != nil {
		h.flash(r, "error", "La session a expiré, veuillez réessayer.")
		http.Redirect(w, r, "/admin/exports", http.StatusSeeOther)
		return
	}

	resource := r.PostFormValue("resource")
	if _, known := exportEndpoints[resource]; !known {
		h.flash(r, "error", "Ressource d'export inconnue.")
		http.Redirect(w, r, "/admin/exports", http.StatusSeeOther)
		return
	}

	requestedBy := ""
	if sess != nil {
		requestedBy = sess.Get(shared.SessionKeyUserName)
	}
	payload := ExportPayload{Resource: resource, RequestedBy: requestedBy, RequestedAt: time.Now().UTC()}
	if _, err := h.client.EnqueueExport(r.Context(), payload); err != nil {
		h.logger.Error("enqueue export", "resource", resource, "error", err)
		h.flash(r, "error", "Impossible de lancer l'export, veuillez réessayer.")
		http.Redirect(w, r, "/admin/exports", http.StatusSeeOther)
		return
	}
	if h.audit != nil {
		h.audit.Record(r.Context(), "export", resource, "", "export CSV")
	}
	h.flash(r, "success", "Export lancé, le fichier sera disponible sous peu.")
	http.Redirect(w, r, "/admin/exports", http.StatusSeeOther)
}

// queueRows lists the export tasks still in flight.
func (h *ExportsHandler) queueRows() []JobRow {
	if h.inspector == nil {
		return nil
	}
	states := []struct {
		list  func(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error)
		label string
		class string
	}{
		{h.inspector.ListActiveTasks, "En cours", "badge-info"},
		{h.inspector.ListPendingTasks, "En attente", "badge-warning"},
		{h.inspector.ListRetryTasks, "Nouvel essai", "badge-warning"},
		{h.inspector.ListArchivedTasks, "Échec", "badge-danger"},
	}
	var rows []JobRow
	for _, state := range states {
		tasks, err := state.list(QueueDefault)
		if err != nil {
			h.logger.Warn("inspect queue", "state", state.label, "error", err)
			continue
		}
		for _, task := range tasks {
			if task.Type != TaskExportCSV {
				continue
			}
			var payload ExportPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				continue
			}
			rows = append(rows, JobRow{
				Resource:   payload.Resource,
				State:      state.label,
				StateClass: state.class,
				EnqueuedAt: payload.RequestedAt.Local().Format("02/01/2006 15:04"),
				at:         payload.RequestedAt,
			})
		}
	}
	return rows
}

// fileRows lists the CSV files already written to the export directory.
func (h *ExportsHandler) fileRows() []JobRow {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Warn("read export dir", "dir", h.dir, "error", err)
		}
		return nil
	}
	var rows []JobRow
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "export-") || filepath.Ext(name) != ".csv" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resource := strings.TrimPrefix(name, "export-")
		if idx := strings.LastIndex(resource, "-"); idx > 0 {
			// strip the -HHMMSS.csv tail, then the date segment
			resource = resource[:idx]
			if idx = strings.LastIndex(resource, "-"); idx > 0 {
				resource = resource[:idx]
			}
		}
		rows = append(rows, JobRow{
			Resource:   resource,
			State:      "Terminé",
			StateClass: "badge-success",
			EnqueuedAt: info.ModTime().Format("02/01/2006 15:04"),
			File:       name,
			at:         info.ModTime(),
		})
	}
	return rows
}

func (h *ExportsHandler) flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}
