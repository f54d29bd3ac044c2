package service

import (
	"context"
	"io"
)

// PhotoStore keeps grievance photos outside the document store so that
// grievance documents stay under the Firestore size limit.
type PhotoStore interface {
	UploadPhoto(ctx context.Context, photo io.Reader, contentType, grievanceID string) (string, error)
	DeletePhoto(ctx context.Context, photoURL string) error
	Close() error
}
