package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// ExportBucket archives rendered exports (reports, timeline images) in GCS.
type ExportBucket interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	PublicURL(key string) string
	Close() error
}

type exportBucket struct {
	log       *logger.Logger
	client    *storage.Client
	bucket    string
	cdnDomain string
	emulator  string
}

// NewExportBucketFromEnv returns (nil, nil) when EXPORT_GCS_BUCKET is unset.
func NewExportBucketFromEnv(ctx context.Context, log *logger.Logger) (ExportBucket, error) {
	name := envutil.String("EXPORT_GCS_BUCKET", "")
	if name == "" {
		return nil, nil
	}
	emulator := strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", ""), "/")

	client, err := storage.NewClient(ctx, clientOptions(emulator)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	b := &exportBucket{
		log:       log.With("service", "ExportBucket"),
		client:    client,
		bucket:    name,
		cdnDomain: envutil.String("EXPORT_CDN_DOMAIN", ""),
		emulator:  emulator,
	}
	b.log.Info("Export bucket initialized", "bucket", name, "emulator_host", emulator)
	return b, nil
}

// clientOptions skips auth against an emulator; otherwise credentials come from
// GOOGLE_APPLICATION_CREDENTIALS_JSON (inline) or GOOGLE_APPLICATION_CREDENTIALS
// (inline JSON or a file path), falling back to ambient credentials.
func clientOptions(emulator string) []option.ClientOption {
	if emulator != "" {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	creds := envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	if creds == "" {
		creds = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")
	}
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func (b *exportBucket) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("missing object key")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	b.log.Debug("Export archived", "key", key, "content_type", contentType)
	return b.PublicURL(key), nil
}

func (b *exportBucket) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	switch {
	case b.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", b.cdnDomain, key)
	case b.emulator != "":
		return fmt.Sprintf("%s/%s/%s", b.emulator, b.bucket, key)
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, key)
	}
}

func (b *exportBucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}
