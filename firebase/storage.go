package firebase

import (
	"context"
	"io"

	firebase "firebase.google.com/go"
	"go.uber.org/zap"
)

// StorageClient stores completion photos out of band and returns a stable
// reference for each upload.
type StorageClient interface {
	UploadCompletionPhoto(ctx context.Context, r io.Reader, key, filename, contentType string) (string, error)
	DeleteFile(ctx context.Context, ref string) error
}

// FirebaseStorageClient writes to a Firebase Storage bucket. A nil app or an
// empty bucket name yields ErrStorageUnavailable on every call.
type FirebaseStorageClient struct {
	app        *firebase.App
	bucketName string
	log        *zap.Logger
}

func NewStorageClient(app *firebase.App, bucketName string, log *zap.Logger) *FirebaseStorageClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &FirebaseStorageClient{app: app, bucketName: bucketName, log: log}
}
