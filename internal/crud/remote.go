package crud

import (
	"context"

	"github.com/chezflora/flora-admin/internal/flora"
)

// RemoteBackend binds a controller to one REST collection of the remote
// API. The draft type D is sent as the JSON payload of create and update.
// Endpoints keep the API's trailing-slash convention.
func RemoteBackend[T any, D any](client *flora.Client, base string) Backend[T, D] {
	return Backend[T, D]{
		List: func(ctx context.Context, q Query) ([]T, int, error) {
			return flora.List[T](ctx, client, base+"/", q.Values())
		},
		Get: func(ctx context.Context, id string) (T, error) {
			return flora.Get[T](ctx, client, base+"/"+id+"/")
		},
		Create: func(ctx context.Context, draft D) (T, error) {
			return flora.Create[T](ctx, client, base+"/", draft)
		},
		Update: func(ctx context.Context, id string, draft D) (T, error) {
			return flora.Update[T](ctx, client, base+"/"+id+"/", draft)
		},
		Delete: func(ctx context.Context, id string) error {
			return flora.Delete(ctx, client, base+"/"+id+"/")
		},
	}
}
