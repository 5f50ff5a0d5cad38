package minio

import (
	"fmt"

	"github.com/gobeaver/diskkit"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func init() {
	diskkit.RegisterDriver("minio", func(cfg *diskkit.Config) (diskkit.Driver, error) {
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("minio: endpoint is required")
		}
		if cfg.MinioBucket == "" {
			return nil, fmt.Errorf("minio: bucket is required")
		}

		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio: create client: %w", err)
		}

		return New(client, Config{
			Bucket:  cfg.MinioBucket,
			Prefix:  cfg.MinioPrefix,
			BaseURL: cfg.MinioBaseURL,
		})
	})
}
