package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP     HTTP
		Log      Log
		S3       S3
		CDN      CDN
		Metadata Metadata
		Resize   Resize
		Worker   Worker
		Swagger  Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
		Bucket         string        `env:"S3_BUCKET,required"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	// CDN signing is optional: no key pair means plain URLs, no URL at
	// all means S3 presigned URLs.
	CDN struct {
		URL            string        `env:"CDN_URL"`
		KeyPairID      string        `env:"CDN_KEY_PAIR_ID"`
		PrivateKey     string        `env:"CDN_PRIVATE_KEY"`
		PrivateKeyFile string        `env:"CDN_PRIVATE_KEY_FILE"`
		Expiry         time.Duration `env:"CDN_EXPIRY" envDefault:"100s"`
	}

	Metadata struct {
		ParentPath string `env:"IMAGE_METADATA_PATH,required"`
	}

	Resize struct {
		ProfilePath      string        `env:"RESIZE_PROFILE_PATH,required"`
		UploadDir        string        `env:"UPLOAD_DIR" envDefault:"/tmp"`
		MagickBin        string        `env:"IMAGEMAGICK_BIN"`
		TransformTimeout time.Duration `env:"TRANSFORM_TIMEOUT" envDefault:"30s"`
		MemoryLimitMiB   int           `env:"RESIZE_MEMORY_LIMIT_MIB" envDefault:"32"`
		MapLimitMiB      int           `env:"RESIZE_MAP_LIMIT_MIB" envDefault:"32"`
		MaxParallel      int           `env:"RESIZE_MAX_PARALLEL" envDefault:"4"`
	}

	Worker struct {
		Enabled         bool          `env:"DEFERRED_WORKER_ENABLED" envDefault:"false"`
		PollInterval    time.Duration `env:"DEFERRED_POLL_INTERVAL" envDefault:"30s"`
		BatchSize       int           `env:"DEFERRED_BATCH_SIZE" envDefault:"10"`
		ShutdownTimeout time.Duration `env:"DEFERRED_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
