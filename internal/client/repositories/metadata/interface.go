// Package metadata is the client's persisted key/value state: the stored
// credential, the identity it belongs to and the UI preferences.
package metadata

import (
	"context"
)

// Repository reads and writes string values by key.
//
// Get reports ok=false for a key that was never set. Set and Delete accept
// several keys so related values change together or not at all.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, pairs map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
}
