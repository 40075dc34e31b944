// Package store defines the settings persistence interface and its
// SQLite implementation.
package store

import "context"

// The credential is the only state persisted across sessions; it lives
// under this key. Absence of a value means "no credential", never an
// error.
const KeyAPICredential = "api_credential"

// Store persists small named settings.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
	Close() error
}
