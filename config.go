package diskkit

import (
	"github.com/gobeaver/beaver-kit/config"
)

// Config selects a backend and carries its connection settings. Loaded
// from the environment; each driver package reads only its own section.
type Config struct {
	// Driver to use (local, memory, s3, gcs, minio)
	Driver string `env:"DISKKIT_DRIVER,default:local"`

	// Local driver configuration
	LocalRoot string `env:"DISKKIT_LOCAL_ROOT,default:./storage"`
	// LocalBaseURL is required when building a local disk from config;
	// URL generation is part of the contract and composing URLs without
	// a base is a configuration error, caught at construction.
	LocalBaseURL string `env:"DISKKIT_LOCAL_BASE_URL"`
	// LocalSigningSecret enables HMAC signed URLs for the local driver.
	LocalSigningSecret string `env:"DISKKIT_LOCAL_SIGNING_SECRET"`

	// S3 driver configuration
	S3Region          string `env:"DISKKIT_S3_REGION,default:us-east-1"`
	S3Bucket          string `env:"DISKKIT_S3_BUCKET"`
	S3Prefix          string `env:"DISKKIT_S3_PREFIX"`
	S3Endpoint        string `env:"DISKKIT_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"DISKKIT_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"DISKKIT_S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"DISKKIT_S3_FORCE_PATH_STYLE,default:false"`
	S3BaseURL         string `env:"DISKKIT_S3_BASE_URL"`

	// GCS (Google Cloud Storage) driver configuration
	GCSBucket          string `env:"DISKKIT_GCS_BUCKET"`
	GCSPrefix          string `env:"DISKKIT_GCS_PREFIX"`
	GCSCredentialsFile string `env:"DISKKIT_GCS_CREDENTIALS_FILE"` // Path to service account JSON
	GCSBaseURL         string `env:"DISKKIT_GCS_BASE_URL"`

	// MinIO / S3-compatible driver configuration
	MinioEndpoint  string `env:"DISKKIT_MINIO_ENDPOINT"`
	MinioBucket    string `env:"DISKKIT_MINIO_BUCKET"`
	MinioPrefix    string `env:"DISKKIT_MINIO_PREFIX"`
	MinioAccessKey string `env:"DISKKIT_MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"DISKKIT_MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"DISKKIT_MINIO_USE_SSL,default:true"`
	MinioBaseURL   string `env:"DISKKIT_MINIO_BASE_URL"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
