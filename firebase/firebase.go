package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var ErrStorageUnavailable = errors.New("photo storage is not configured")

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilename.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}

	return sanitized
}

// sanitizeKey keeps the slash-separated structure of a logical key while
// cleaning each segment.
func sanitizeKey(key string) string {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	clean := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		clean = append(clean, sanitizeFilename(p))
	}
	return strings.Join(clean, "/")
}

// objectPath builds a collision-free object name under key.
func objectPath(key, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s_%s",
		sanitizeKey(key),
		now.Unix(),
		uuid.New().String()[:8],
		sanitizeFilename(filename),
	)
}

// Init creates the Firebase app. credentials is either inline JSON or a path
// to a service-account file; empty means application default credentials.
func Init(ctx context.Context, credentials string, log *zap.Logger) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case strings.HasPrefix(credentials, "{"):
		log.Info("using Firebase credentials from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
	case credentials != "":
		log.Info("using Firebase credentials from file", zap.String("path", credentials))
		opts = append(opts, option.WithCredentialsFile(credentials))
	default:
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	log.Info("Firebase initialized")
	return app, nil
}

func (f *FirebaseStorageClient) bucket(ctx context.Context) (*storage.BucketHandle, error) {
	if f.app == nil || f.bucketName == "" {
		return nil, ErrStorageUnavailable
	}
	client, err := f.app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(f.bucketName)
}

func (f *FirebaseStorageClient) UploadCompletionPhoto(ctx context.Context, r io.Reader, key, filename, contentType string) (string, error) {
	bucket, err := f.bucket(ctx)
	if err != nil {
		return "", err
	}

	path := objectPath(key, filename, time.Now())
	obj := bucket.Object(path)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %v", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		f.log.Warn("failed to set public ACL", zap.String("object", path), zap.Error(err))
	}

	return f.PublicURL(path), nil
}

// DeleteFile deletes an object given its path or its public URL.
func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, ref string) error {
	bucket, err := f.bucket(ctx)
	if err != nil {
		return err
	}

	path := strings.TrimPrefix(ref, f.PublicURL(""))
	if err := bucket.Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", path, err)
	}

	f.log.Info("deleted object", zap.String("object", path), zap.String("bucket", f.bucketName))
	return nil
}

func (f *FirebaseStorageClient) PublicURL(path string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", f.bucketName, path)
}
