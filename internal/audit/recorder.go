package audit

import (
	"context"
	"log/slog"

	"github.com/chezflora/flora-admin/internal/shared"
)

// Recorder adapts the store to the screens: it stamps the acting operator
// from the session and never fails the request it records for.
type Recorder struct {
	logger *slog.Logger
	store  *Store
}

// NewRecorder constructs a Recorder.
func NewRecorder(logger *slog.Logger, store *Store) *Recorder {
	return &Recorder{logger: logger, store: store}
}

// Record writes one trail entry. The actor comes from the session bound to
// ctx; failures are logged and swallowed so a broken audit store never
// blocks the panel.
func (r *Recorder) Record(ctx context.Context, action, resource, targetID, detail string) {
	actor := "inconnu"
	if sess := shared.SessionFromContext(ctx); sess != nil {
		if name := sess.Get(shared.SessionKeyUserName); name != "" {
			actor = name
		} else if id := sess.User(); id != "" {
			actor = id
		}
	}
	entry := Entry{
		Actor:    actor,
		Action:   action,
		Resource: resource,
		TargetID: targetID,
		Detail:   detail,
	}
	if err := r.store.Insert(ctx, entry); err != nil {
		r.logger.Error("audit record", "action", action, "resource", resource, "error", err)
	}
}
