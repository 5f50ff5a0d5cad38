package s3

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gobeaver/diskkit"
)

func init() {
	diskkit.RegisterDriver("s3", func(cfg *diskkit.Config) (diskkit.Driver, error) {
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3: bucket is required")
		}

		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.S3Region),
		}
		if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("s3: load aws config: %w", err)
		}

		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = &cfg.S3Endpoint
			}
			o.UsePathStyle = cfg.S3ForcePathStyle
		})

		return New(client, Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			BaseURL:   cfg.S3BaseURL,
			Presigner: awss3.NewPresignClient(client),
		})
	})
}
