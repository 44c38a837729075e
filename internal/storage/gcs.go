package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// bucket setup must finish within this
const gcsSetupTimeout = 30 * time.Second

// GCSSink stores received files as objects of one bucket.
type GCSSink struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	bucketName string
}

// NewGCSSink connects to bucketName, creating it in projectID when missing.
// STORAGE_EMULATOR_HOST and GOOGLE_CLOUD_CREDENTIALS (base64 JSON) are
// honored.
func NewGCSSink(projectID, bucketName string) (*GCSSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gcsSetupTimeout)
	defer cancel()

	opts, err := gcsClientOptions()
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	bucket := client.Bucket(bucketName)
	if err := ensureBucket(ctx, bucket, projectID); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %s: %w", bucketName, err)
	}

	return &GCSSink{
		client:     client,
		bucket:     bucket,
		bucketName: bucketName,
	}, nil
}

func gcsClientOptions() ([]option.ClientOption, error) {
	if host := os.Getenv("STORAGE_EMULATOR_HOST"); host != "" {
		log.Debug().
			Str("emulator_host", host).
			Msg("using GCS emulator")
		return []option.ClientOption{
			option.WithEndpoint("http://" + host),
			option.WithoutAuthentication(),
		}, nil
	}

	if creds := os.Getenv("GOOGLE_CLOUD_CREDENTIALS"); creds != "" {
		decoded, err := base64.StdEncoding.DecodeString(creds)
		if err != nil {
			return nil, fmt.Errorf("decoding GOOGLE_CLOUD_CREDENTIALS: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	}

	// application default credentials
	return nil, nil
}

func ensureBucket(ctx context.Context, bucket *storage.BucketHandle, projectID string) error {
	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}

	log.Info().
		Str("project", projectID).
		Msg("download bucket missing, creating it")
	return bucket.Create(ctx, projectID, nil)
}

// Create starts a resumable upload guarded by a DoesNotExist precondition,
// trying suffixed names until one is free.
func (g *GCSSink) Create(ctx context.Context, name string) (Writer, error) {
	name, err := CleanName(name)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxNameAttempts; i++ {
		candidate := candidateName(name, i)
		exists, err := g.Exists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		wctx, cancel := context.WithCancel(ctx)
		obj := g.bucket.Object(candidate).If(storage.Conditions{DoesNotExist: true})
		w := obj.NewWriter(wctx)
		w.ContentType = mime.TypeByExtension(filepath.Ext(candidate))

		return &gcsWriter{w: w, cancel: cancel, name: candidate}, nil
	}
	return nil, fmt.Errorf("no free name for %s in bucket %s", name, g.bucketName)
}

type gcsWriter struct {
	w      *storage.Writer
	cancel context.CancelFunc
	name   string
}

func (w *gcsWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *gcsWriter) Name() string {
	return w.name
}

func (w *gcsWriter) Close() error {
	defer w.cancel()
	if err := w.w.Close(); err != nil {
		return fmt.Errorf("failed to upload %s: %w", w.name, err)
	}
	return nil
}

// Abort cancels the upload; the object is never created.
func (w *gcsWriter) Abort() error {
	w.cancel()
	w.w.Close()
	return nil
}

func (g *GCSSink) Exists(ctx context.Context, name string) (bool, error) {
	_, err := g.bucket.Object(name).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat gs://%s/%s: %w", g.bucketName, name, err)
	}
}

func (g *GCSSink) Location(name string) string {
	return fmt.Sprintf("gs://%s/%s", g.bucketName, name)
}

// ListFiles returns the objects whose name starts with prefix.
func (g *GCSSink) ListFiles(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s: %w", g.bucketName, prefix, err)
		}
		files = append(files, FileInfo{
			Name:         attrs.Name,
			Size:         attrs.Size,
			ContentType:  attrs.ContentType,
			ModifiedTime: attrs.Updated,
		})
	}
}

func (g *GCSSink) Close() error {
	return g.client.Close()
}
