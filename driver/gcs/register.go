package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/diskkit"
	"google.golang.org/api/option"
)

func init() {
	diskkit.RegisterDriver("gcs", func(cfg *diskkit.Config) (diskkit.Driver, error) {
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("gcs: bucket is required")
		}

		// Falls back to GOOGLE_APPLICATION_CREDENTIALS or ambient
		// credentials when no key file is configured.
		var clientOpts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}

		client, err := storage.NewClient(context.Background(), clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("gcs: create client: %w", err)
		}

		return New(client, Config{
			Bucket:  cfg.GCSBucket,
			Prefix:  cfg.GCSPrefix,
			BaseURL: cfg.GCSBaseURL,
		})
	})
}
