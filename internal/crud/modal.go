package crud

import (
	"net/http"
	"net/url"
)

// ModalKind enumerates the dialog states of a list page. The modal state
// is a tagged union: a page holds exactly one ModalState value, so at most
// one dialog can be open at any instant.
type ModalKind string

const (
	ModalClosed ModalKind = ""
	ModalAdd    ModalKind = "add"
	ModalEdit   ModalKind = "edit"
	ModalDelete ModalKind = "delete"
	ModalDetail ModalKind = "detail"
)

// ModalState describes which dialog is open and, for edit/delete/detail,
// which record it targets. Drafts are rebuilt from the target on every
// edit open and discarded on close; nothing modal-related survives a
// close without submit.
type ModalState struct {
	Kind     ModalKind
	TargetID string
}

// ModalFromRequest derives the modal state from the request. Target-bound
// kinds without a target collapse to closed, as do unknown kinds.
func ModalFromRequest(r *http.Request) ModalState {
	kind := ModalKind(r.URL.Query().Get("modal"))
	target := r.URL.Query().Get("target")
	switch kind {
	case ModalAdd:
		return ModalState{Kind: ModalAdd}
	case ModalEdit, ModalDelete, ModalDetail:
		if target == "" {
			return ModalState{}
		}
		return ModalState{Kind: kind, TargetID: target}
	default:
		return ModalState{}
	}
}

// IsOpen reports whether any dialog is open.
func (m ModalState) IsOpen() bool {
	return m.Kind != ModalClosed
}

// NeedsTarget reports whether the state references a record.
func (m ModalState) NeedsTarget() bool {
	switch m.Kind {
	case ModalEdit, ModalDelete, ModalDetail:
		return true
	default:
		return false
	}
}

// URL renders the modal as query parameters appended to a list URL.
func (m ModalState) URL(listURL string) string {
	if !m.IsOpen() {
		return listURL
	}
	sep := "?"
	for _, c := range listURL {
		if c == '?' {
			sep = "&"
			break
		}
	}
	out := listURL + sep + "modal=" + string(m.Kind)
	if m.TargetID != "" {
		out += "&target=" + url.QueryEscape(m.TargetID)
	}
	return out
}
