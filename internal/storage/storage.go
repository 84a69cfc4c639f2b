package storage

import "context"

// Storage persists proof-of-payment files. The rest of the system only ever
// sees the returned URL; bytes never land in the database.
type Storage interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}
