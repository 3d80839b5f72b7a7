package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"eatery/internal/config"
	"eatery/internal/keys"
	internalmodels "eatery/internal/models"
)

// ResultStore keeps merged tables and rendered maps in an S3-compatible
// bucket.
type ResultStore struct {
	client *minio.Client
	bucket string
}

// NewResultStore connects to the MinIO endpoint in cfg.
func NewResultStore(cfg config.MinIO) (*ResultStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	log.Println("Successfully connected to MinIO endpoint:", cfg.Endpoint)
	return &ResultStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *ResultStore) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ResultStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	log.Printf("Created bucket %q", s.bucket)
	return nil
}

// PutTable stores table as JSON under keys.Table and returns the key.
// Re-running a query for a location overwrites its previous result.
func (s *ResultStore) PutTable(ctx context.Context, table internalmodels.MergedTable) (string, error) {
	data, err := EncodeTable(table)
	if err != nil {
		return "", err
	}
	key := keys.Table(table.Query, table.Location.Name)
	if err := s.put(ctx, key, data, "application/json"); err != nil {
		return "", err
	}
	log.Printf("Stored %d rows for %q in bucket %q with key %q", table.Len(), table.Location.Name, s.bucket, key)
	return key, nil
}

// PutMap stores a rendered map page under keys.Map and returns the key.
func (s *ResultStore) PutMap(ctx context.Context, query, location string, page []byte) (string, error) {
	key := keys.Map(query, location)
	if err := s.put(ctx, key, page, "text/html; charset=utf-8"); err != nil {
		return "", err
	}
	return key, nil
}

// PutTables stores every table in mapping order and stops at the first
// failure.
func (s *ResultStore) PutTables(ctx context.Context, tables *internalmodels.ByLocation[internalmodels.MergedTable]) error {
	return tables.Each(func(_ string, t internalmodels.MergedTable) error {
		_, err := s.PutTable(ctx, t)
		return err
	})
}

func (s *ResultStore) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %q: %w", key, err)
	}
	return nil
}

// GetTable loads a merged table from bucket. It matches service.LoaderFunc.
func (s *ResultStore) GetTable(ctx context.Context, bucket, key string) (*internalmodels.MergedTable, error) {
	object, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer object.Close()

	table, err := DecodeTable(object)
	if err != nil {
		return nil, fmt.Errorf("object %q: %w", key, err)
	}
	log.Printf("Retrieved %d rows for %q from bucket %q with key %q", table.Len(), table.Location.Name, bucket, key)
	return table, nil
}

func EncodeTable(table internalmodels.MergedTable) ([]byte, error) {
	data, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table to JSON: %w", err)
	}
	return data, nil
}

// DecodeTable streams a table from r. Missing values come back as missing.
func DecodeTable(r io.Reader) (*internalmodels.MergedTable, error) {
	var table internalmodels.MergedTable
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode JSON from stream: %w", err)
	}
	return &table, nil
}
