// Package gcs reads and writes CSV ledgers in Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/dvloznov/finance-coach/internal/logger"
)

// ParseURI splits gs://bucket/path/to/object into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Source loads a CSV ledger object. It assumes Application Default
// Credentials are configured.
type Source struct {
	client *storage.Client
	uri    string
	bucket string
	object string
}

// NewSource creates a storage client and a source for uri.
func NewSource(ctx context.Context, uri string) (*Source, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("NewSource: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewSource: creating storage client: %w", err)
	}
	return &Source{client: client, uri: uri, bucket: bucket, object: object}, nil
}

// Close closes the storage client.
func (s *Source) Close() error {
	return s.client.Close()
}

// Name implements ledger.Source.
func (s *Source) Name() string {
	return s.uri
}

// Load implements ledger.Source.
func (s *Source) Load(ctx context.Context) ([]domain.Transaction, error) {
	rc, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Source.Load: reading object %s/%s: %w", s.bucket, s.object, err)
	}
	defer rc.Close()

	txns, err := ledger.DecodeCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("Source.Load: %s: %w", s.uri, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("uri", s.uri).
		Int64("bytes", rc.Attrs.Size).
		Int("rows", len(txns)).
		Msg("Loaded ledger object")

	return txns, nil
}

// UploadFile copies a local ledger file to uri, replacing any existing object.
func UploadFile(ctx context.Context, uri, filePath string) error {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return fmt.Errorf("UploadFile: %w", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	// Reject files the ledger could not load later.
	if _, err := ledger.DecodeCSV(f); err != nil {
		return fmt.Errorf("UploadFile: %s: %w", filePath, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("UploadFile: rewind %q: %w", filePath, err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("UploadFile: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("UploadFile: copy file to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadFile: finalize upload: %w", err)
	}

	return nil
}

var _ ledger.Source = (*Source)(nil)
