// Package objectstore backs s3_operation nodes with an S3-compatible client.
package objectstore

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Store struct {
	client *minio.Client
	logger *slog.Logger
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{logger: logger.With("component", "objectstore")}
}

func (f *Factory) ForCredential(cred *domain.Credential) (ports.ObjectStore, error) {
	accessKey := cred.Field("accessKey", "")
	secretKey := cred.Field("secretKey", "")
	if accessKey == "" || secretKey == "" {
		return nil, domain.NewConfigurationError("s3 credential is missing accessKey or secretKey", map[string]interface{}{"credential_id": cred.ID})
	}

	client, err := minio.New(cred.Field("endpoint", "s3.amazonaws.com"), &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cred.Field("useSSL", "true") != "false",
		Region: cred.Field("region", ""),
	})
	if err != nil {
		return nil, domain.NewExternalError("failed to build s3 client", err)
	}

	return &Store{client: client, logger: f.logger}, nil
}

func (s *Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	keys := []string{}
	objects := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return nil, object.Err
		}
		keys = append(keys, object.Key)
	}

	s.logger.Debug("objects listed", "bucket", bucket, "prefix", prefix, "count", len(keys))
	return keys, nil
}

func (s *Store) Upload(ctx context.Context, bucket, key string, content []byte) error {
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{})
	return err
}

func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}
