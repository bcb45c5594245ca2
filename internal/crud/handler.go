package crud

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// Action is a custom row mutation exposed at POST {base}/{id}/action/{slug},
// such as cancelling an order or marking a payment refunded.
type Action struct {
	Flash string
	Run   func(ctx context.Context, id string) error
}

// Recorder persists an audit entry for each successful mutation.
type Recorder interface {
	Record(ctx context.Context, action, resource, targetID, detail string)
}

// PagesConfig assembles one schema-driven list screen.
type PagesConfig[T any, D any] struct {
	Logger   *slog.Logger
	Renderer *view.Renderer
	CSRF     *shared.CSRFManager
	Backend  Backend[T, D]
	Schema   Schema[T]
	BasePath string
	PerPage  int

	// Decode turns submitted form values into a draft. The returned map
	// carries per-field messages when the input cannot be submitted at all;
	// server-side validation failures come back as flora.ValidationError.
	Decode func(values url.Values) (D, map[string]string)
	// Options supplies remote-backed select choices (categories, products)
	// merged into the declared form fields by name on each render.
	Options func(ctx context.Context) map[string][]Option
	// Fixed filters are always applied to the backend query but never shown
	// in the filter bar. Fixed-scope screens such as the banned-users list
	// are the same schema with a Fixed entry.
	Fixed map[string]string

	Actions  map[string]Action
	Audit    Recorder
	Resource string
}

// Pages serves the four list-screen routes of one resource.
type Pages[T any, D any] struct {
	cfg     PagesConfig[T, D]
	backend Backend[T, D]
	ctrl    *Controller[T, D]
}

// NewPages wires a controller around the backend and returns the handler
// set for one resource screen.
func NewPages[T any, D any](cfg PagesConfig[T, D]) *Pages[T, D] {
	backend := cfg.Backend
	if len(cfg.Fixed) > 0 {
		inner := backend.List
		backend.List = func(ctx context.Context, q Query) ([]T, int, error) {
			for name, value := range cfg.Fixed {
				q = q.WithFilter(name, value)
			}
			return inner(ctx, q)
		}
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = shared.DefaultPerPage
	}
	return &Pages[T, D]{
		cfg:     cfg,
		backend: backend,
		ctrl:    NewController(backend, cfg.PerPage, "", "retained_page:"+cfg.BasePath),
	}
}

// Mount attaches the screen routes to a router.
func (p *Pages[T, D]) Mount(r chi.Router) {
	r.Get("/", p.List)
	r.Post("/", p.Create)
	r.Post("/{id}", p.Update)
	r.Post("/{id}/delete", p.Delete)
	if len(p.cfg.Actions) > 0 {
		r.Post("/{id}/action/{slug}", p.Action)
	}
}

// List renders the table, filter bar and whichever modal the URL opens.
func (p *Pages[T, D]) List(w http.ResponseWriter, r *http.Request) {
	q := p.parseQuery(r)
	state, err := p.ctrl.Load(r.Context(), q)
	if p.redirectExpired(w, r, err) {
		return
	}
	p.render(w, r, http.StatusOK, state, ModalFromRequest(r), nil, nil)
}

// Create handles the add-modal submit. The modal closes only after the
// creation succeeded; any failure re-renders it with the entered values.
func (p *Pages[T, D]) Create(w http.ResponseWriter, r *http.Request) {
	q, ok := p.acceptForm(w, r)
	if !ok {
		return
	}
	modal := ModalState{Kind: ModalAdd}
	draft, fieldErrs := p.cfg.Decode(r.PostForm)
	if len(fieldErrs) > 0 {
		p.renderForm(w, r, q, modal, r.PostForm, fieldErrs)
		return
	}

	created, state, err := p.ctrl.Create(r.Context(), q, draft)
	if err != nil {
		p.mutationFailed(w, r, q, modal, err)
		return
	}
	p.recordAudit(r, "create", p.cfg.Schema.ID(created), p.describe(created))
	p.flash(r, "success", p.cfg.Schema.Singular+" créé avec succès.")
	http.Redirect(w, r, state.Query.URL(p.cfg.BasePath), http.StatusSeeOther)
}

// Update handles the edit-modal submit for one record.
func (p *Pages[T, D]) Update(w http.ResponseWriter, r *http.Request) {
	q, ok := p.acceptForm(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	modal := ModalState{Kind: ModalEdit, TargetID: id}
	draft, fieldErrs := p.cfg.Decode(r.PostForm)
	if len(fieldErrs) > 0 {
		p.renderForm(w, r, q, modal, r.PostForm, fieldErrs)
		return
	}

	updated, state, err := p.ctrl.Update(r.Context(), q, id, draft)
	if err != nil {
		p.mutationFailed(w, r, q, modal, err)
		return
	}
	p.recordAudit(r, "update", id, p.describe(updated))
	p.flash(r, "success", p.cfg.Schema.Singular+" mis à jour avec succès.")
	http.Redirect(w, r, state.Query.URL(p.cfg.BasePath), http.StatusSeeOther)
}

// Delete removes one record, then redirects to wherever the refetch landed.
// Deleting the only item of the last page therefore steps back one page
// instead of showing an empty table.
func (p *Pages[T, D]) Delete(w http.ResponseWriter, r *http.Request) {
	q, ok := p.acceptForm(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	state, err := p.ctrl.Remove(r.Context(), q, id)
	if err != nil {
		if p.redirectExpired(w, r, err) {
			return
		}
		if errors.Is(err, flora.ErrNotFound) {
			p.flash(r, "error", p.cfg.Schema.Singular+" introuvable.")
		} else {
			p.cfg.Logger.Error("delete failed", "resource", p.cfg.Resource, "id", id, "error", err)
			p.flash(r, "error", "La suppression a échoué, veuillez réessayer.")
		}
		http.Redirect(w, r, q.URL(p.cfg.BasePath), http.StatusSeeOther)
		return
	}
	p.recordAudit(r, "delete", id, "")
	p.flash(r, "success", p.cfg.Schema.Singular+" supprimé avec succès.")
	http.Redirect(w, r, state.Query.URL(p.cfg.BasePath), http.StatusSeeOther)
}

// Action runs a named custom mutation against one record.
func (p *Pages[T, D]) Action(w http.ResponseWriter, r *http.Request) {
	q, ok := p.acceptForm(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	act, found := p.cfg.Actions[slug]
	if !found {
		http.NotFound(w, r)
		return
	}
	id := chi.URLParam(r, "id")
	if err := act.Run(r.Context(), id); err != nil {
		if p.redirectExpired(w, r, err) {
			return
		}
		p.cfg.Logger.Error("action failed", "resource", p.cfg.Resource, "action", slug, "id", id, "error", err)
		p.flash(r, "error", "L'opération a échoué, veuillez réessayer.")
		http.Redirect(w, r, q.URL(p.cfg.BasePath), http.StatusSeeOther)
		return
	}
	p.recordAudit(r, slug, id, "")
	p.flash(r, "success", act.Flash)
	state, err := p.ctrl.Load(r.Context(), q)
	if p.redirectExpired(w, r, err) {
		return
	}
	http.Redirect(w, r, state.Query.URL(p.cfg.BasePath), http.StatusSeeOther)
}

func (p *Pages[T, D]) parseQuery(r *http.Request) Query {
	return ParseQuery(r, p.cfg.PerPage, p.cfg.Schema.FilterNames())
}

// acceptForm parses the form and verifies the CSRF token. It returns the
// list query carried by the request URL so the screen lands back where the
// operator was.
func (p *Pages[T, D]) acceptForm(w http.ResponseWriter, r *http.Request) (Query, bool) {
	q := p.parseQuery(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formulaire invalide", http.StatusBadRequest)
		return q, false
	}
	sess := shared.SessionFromContext(r.Context())
	if err := p.cfg.CSRF.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err != nil {
		p.flash(r, "error", "La session a expiré, veuillez réessayer.")
		http.Redirect(w, r, q.URL(p.cfg.BasePath), http.StatusSeeOther)
		return q, false
	}
	return q, true
}

// mutationFailed maps a create/update error to either a login redirect, a
// re-rendered modal with field errors, or a flash.
func (p *Pages[T, D]) mutationFailed(w http.ResponseWriter, r *http.Request, q Query, modal ModalState, err error) {
	if p.redirectExpired(w, r, err) {
		return
	}
	var vErr *flora.ValidationError
	if errors.As(err, &vErr) {
		p.renderForm(w, r, q, modal, r.PostForm, vErr.FieldErrors())
		return
	}
	var apiErr *flora.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		p.renderForm(w, r, q, modal, r.PostForm, map[string]string{"general": apiErr.Detail})
		return
	}
	p.cfg.Logger.Error("mutation failed", "resource", p.cfg.Resource, "error", err)
	p.flash(r, "error", "Une erreur est survenue, veuillez réessayer.")
	http.Redirect(w, r, q.URL(p.cfg.BasePath), http.StatusSeeOther)
}

// renderForm reloads the current page and re-renders it with the modal kept
// open, the submitted values preserved and the field errors attached.
func (p *Pages[T, D]) renderForm(w http.ResponseWriter, r *http.Request, q Query, modal ModalState, values url.Values, fieldErrs map[string]string) {
	state, err := p.ctrl.Load(r.Context(), q)
	if p.redirectExpired(w, r, err) {
		return
	}
	p.render(w, r, http.StatusBadRequest, state, modal, values, fieldErrs)
}

func (p *Pages[T, D]) redirectExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	return RedirectExpired(w, r, err)
}

// RedirectExpired sends the operator back to the login screen when the API
// reported that the stored credentials are gone for good.
func RedirectExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, flora.ErrAuthExpired) {
		return false
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Votre session a expiré, veuillez vous reconnecter."})
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
	return true
}

func (p *Pages[T, D]) flash(r *http.Request, kind, message string) {
	if message == "" {
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

func (p *Pages[T, D]) recordAudit(r *http.Request, action, targetID, detail string) {
	if p.cfg.Audit == nil {
		return
	}
	p.cfg.Audit.Record(r.Context(), action, p.cfg.Resource, targetID, detail)
}

func (p *Pages[T, D]) describe(record T) string {
	if p.cfg.Schema.Describe == nil {
		return ""
	}
	return p.cfg.Schema.Describe(record)
}

// render builds the list view model and hands it to the layout renderer.
func (p *Pages[T, D]) render(w http.ResponseWriter, r *http.Request, status int, state PageState[T], modal ModalState, formValues url.Values, fieldErrs map[string]string) {
	schema := p.cfg.Schema
	listURL := state.Query.URL(p.cfg.BasePath)

	lv := ListView{
		Title:      schema.Title,
		Singular:   schema.Singular,
		Searchable: schema.Searchable,
		CanCreate:  schema.CanCreate,
		BasePath:   p.cfg.BasePath,
		ListURL:    listURL,
		Search:     state.Query.Search,
		Pagination: state.Pagination,
		Err:        state.Err,
	}
	if schema.CanCreate {
		lv.AddURL = ModalState{Kind: ModalAdd}.URL(listURL)
	}

	for _, col := range schema.Columns {
		lv.Columns = append(lv.Columns, col.Label)
	}
	lv.HasRowMenu = schema.CanEdit || schema.CanDelete || schema.HasDetail || len(schema.RowActions) > 0

	for _, item := range state.Items {
		row := RowView{ID: schema.ID(item)}
		for _, col := range schema.Columns {
			row.Cells = append(row.Cells, col.Value(item))
		}
		if schema.HasDetail {
			row.DetailURL = ModalState{Kind: ModalDetail, TargetID: row.ID}.URL(listURL)
		}
		if schema.CanEdit {
			row.EditURL = ModalState{Kind: ModalEdit, TargetID: row.ID}.URL(listURL)
		}
		if schema.CanDelete {
			row.DeleteURL = ModalState{Kind: ModalDelete, TargetID: row.ID}.URL(listURL)
		}
		for _, act := range schema.RowActions {
			if act.Show != nil && !act.Show(item) {
				continue
			}
			row.Actions = append(row.Actions, RowActionView{
				Label:   act.Label,
				Class:   act.Class,
				Confirm: act.Confirm,
				URL:     state.Query.URL(recordPath(p.cfg.BasePath, row.ID) + "/action/" + act.Slug),
			})
		}
		lv.Rows = append(lv.Rows, row)
	}

	for _, f := range schema.Filters {
		lv.Filters = append(lv.Filters, FilterView{Filter: f, Selected: state.Query.Filters[f.Name]})
	}

	if state.Pagination.HasPrev() {
		lv.PrevURL = state.Query.WithPage(state.Pagination.PrevPage()).URL(p.cfg.BasePath)
	}
	if state.Pagination.HasNext() {
		lv.NextURL = state.Query.WithPage(state.Pagination.NextPage()).URL(p.cfg.BasePath)
	}
	for _, n := range pageWindow(state.Pagination) {
		lv.PageLinks = append(lv.PageLinks, PageLink{
			Number:  n,
			URL:     state.Query.WithPage(n).URL(p.cfg.BasePath),
			Current: n == state.Pagination.Page,
		})
	}

	if modal.IsOpen() {
		mv, ok := p.buildModal(w, r, state, modal, listURL, formValues, fieldErrs)
		if !ok {
			return
		}
		lv.Modal = mv
	}

	p.cfg.Renderer.Page(w, r, status, "resource_list.html", schema.Title, lv)
}

// buildModal resolves the modal target record when one is referenced and
// assembles the dialog view model. A vanished target closes the dialog.
func (p *Pages[T, D]) buildModal(w http.ResponseWriter, r *http.Request, state PageState[T], modal ModalState, listURL string, formValues url.Values, fieldErrs map[string]string) (*ModalView, bool) {
	schema := p.cfg.Schema
	mv := &ModalView{
		Kind:     string(modal.Kind),
		TargetID: modal.TargetID,
		CloseURL: listURL,
		Errors:   fieldErrs,
	}
	if fieldErrs != nil {
		mv.General = fieldErrs["general"]
	}

	var target T
	if modal.NeedsTarget() {
		rec, err := p.backend.Get(r.Context(), modal.TargetID)
		if err != nil {
			if p.redirectExpired(w, r, err) {
				return nil, false
			}
			if errors.Is(err, flora.ErrNotFound) {
				// Record vanished between render and click.
				return nil, true
			}
			p.cfg.Logger.Error("load modal target", "resource", p.cfg.Resource, "id", modal.TargetID, "error", err)
			return nil, true
		}
		target = rec
		if schema.Describe != nil {
			mv.TargetName = schema.Describe(rec)
		}
	}

	switch modal.Kind {
	case ModalAdd:
		mv.Title = "Ajouter : " + schema.Singular
		mv.ActionURL = state.Query.URL(p.cfg.BasePath)
		mv.Fields = p.fieldViews(r.Context(), formValues, fieldErrs)
	case ModalEdit:
		mv.Title = "Modifier : " + schema.Singular
		mv.ActionURL = state.Query.URL(recordPath(p.cfg.BasePath, modal.TargetID))
		values := formValues
		if values == nil && schema.Draft != nil {
			values = schema.Draft(target)
		}
		mv.Fields = p.fieldViews(r.Context(), values, fieldErrs)
	case ModalDelete:
		mv.Title = "Supprimer : " + schema.Singular
		mv.ActionURL = state.Query.URL(recordPath(p.cfg.BasePath, modal.TargetID) + "/delete")
	case ModalDetail:
		mv.Title = schema.Singular
		if schema.Detail != nil {
			mv.DetailRows = schema.Detail(target)
		}
	}
	return mv, true
}

// fieldViews merges declared fields, dynamic options and submitted or
// drafted values into the form view.
func (p *Pages[T, D]) fieldViews(ctx context.Context, values url.Values, fieldErrs map[string]string) []FieldView {
	var dynamic map[string][]Option
	if p.cfg.Options != nil {
		dynamic = p.cfg.Options(ctx)
	}
	out := make([]FieldView, 0, len(p.cfg.Schema.Fields))
	for _, field := range p.cfg.Schema.Fields {
		fv := FieldView{Field: field}
		if len(fv.Options) == 0 {
			fv.Options = dynamic[field.Name]
		}
		if values != nil {
			switch field.Kind {
			case FieldCheckbox:
				v := values.Get(field.Name)
				fv.Checked = v == "on" || v == "true" || v == "1"
			case FieldMultiSelect:
				fv.Selected = map[string]bool{}
				for _, v := range values[field.Name] {
					fv.Selected[v] = true
				}
			default:
				fv.Value = values.Get(field.Name)
			}
		}
		if fieldErrs != nil {
			fv.Error = fieldErrs[field.Name]
		}
		out = append(out, fv)
	}
	return out
}

// recordPath builds the mutation path for one record. The id is escaped so
// a non-numeric identifier survives URL embedding.
func recordPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}

// pageWindow picks the page numbers shown as direct links: all of them for
// short result sets, otherwise a five-wide window around the current page.
func pageWindow(p shared.Pagination) []int {
	if p.TotalPages <= 1 {
		return nil
	}
	const width = 5
	start, end := 1, p.TotalPages
	if p.TotalPages > width {
		start = p.Page - width/2
		if start < 1 {
			start = 1
		}
		end = start + width - 1
		if end > p.TotalPages {
			end = p.TotalPages
			start = end - width + 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		pages = append(pages, n)
	}
	return pages
}

// View models consumed by the resource_list template.

type ListView struct {
	Title      string
	Singular   string
	Searchable bool
	CanCreate  bool
	HasRowMenu bool

	BasePath string
	ListURL  string
	AddURL   string

	Columns []string
	Rows    []RowView
	Filters []FilterView
	Search  string

	Pagination shared.Pagination
	PrevURL    string
	NextURL    string
	PageLinks  []PageLink

	Err   string
	Modal *ModalView
}

type RowView struct {
	ID        string
	Cells     []template.HTML
	DetailURL string
	EditURL   string
	DeleteURL string
	Actions   []RowActionView
}

type RowActionView struct {
	Label   string
	URL     string
	Class   string
	Confirm string
}

type FilterView struct {
	Filter
	Selected string
}

type PageLink struct {
	Number  int
	URL     string
	Current bool
}

type ModalView struct {
	Kind       string
	Title      string
	TargetID   string
	TargetName string
	ActionURL  string
	CloseURL   string
	Fields     []FieldView
	Errors     map[string]string
	General    string
	DetailRows []DetailRow
}

type FieldView struct {
	Field
	Value    string
	Checked  bool
	Selected map[string]bool
	Error    string
}
