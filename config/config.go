package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageTypeDisk = "disk"
	StorageTypeS3   = "s3"
)

type Config struct {
	TLSDomains  string `env:"TLS_DOMAINS"` // e.g. "example.com,example2.com"
	MySQLDSN    string `env:"MYSQL_DSN"`   // MySQL will be used if this is set
	SQLiteFile  string `env:"SQLITE_FILE" envDefault:"hoaxify.db"`
	BindAddress string `env:"BIND_ADDRESS" envDefault:"0.0.0.0:8080"`
	TmpDir      string `env:"TMP_DIR" envDefault:"/tmp"`
	DebugMode   bool   `env:"DEBUG_MODE" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
	SessionKey  string `env:"SESSION_KEY" envDefault:"this is a long key"`

	// Blob storage for attachments
	StorageType       string `env:"STORAGE_TYPE" envDefault:"disk"`
	UploadPath        string `env:"UPLOAD_PATH" envDefault:"uploads"`
	AttachmentsFolder string `env:"ATTACHMENTS_FOLDER" envDefault:"attachments"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"` // empty for AWS, set for MinIO and friends
	S3AccessKey       string `env:"S3_ACCESS_KEY"`
	S3SecretKey       string `env:"S3_SECRET_KEY"`
	S3Prefix          string `env:"S3_PREFIX"`
	S3SSEEncryption   string `env:"S3_SSE_ENCRYPTION"` // e.g. "AES256"
	MaxUploadBytes    int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	ThumbSize         uint   `env:"THUMB_SIZE" envDefault:"400"`

	// Timeline
	PageSizeDefault int `env:"PAGE_SIZE_DEFAULT" envDefault:"10"`
	PageSizeMax     int `env:"PAGE_SIZE_MAX" envDefault:"100"`

	// Orphaned attachment sweep
	ReclaimInterval     time.Duration `env:"RECLAIM_INTERVAL" envDefault:"1h"`
	AttachmentRetention time.Duration `env:"ATTACHMENT_RETENTION" envDefault:"1h"`
}

// Paging holds the page size bounds used by the timeline queries
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// Reclaim holds the schedule of the orphaned attachment sweep
type Reclaim struct {
	Interval  time.Duration
	Retention time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageTypeDisk:
		if c.UploadPath == "" {
			return errors.New("UPLOAD_PATH is required for disk storage")
		}
	case StorageTypeS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.StorageType)
	}
	if c.PageSizeDefault < 1 || c.PageSizeMax < c.PageSizeDefault {
		return fmt.Errorf("invalid page size bounds: default %d, max %d", c.PageSizeDefault, c.PageSizeMax)
	}
	if c.ReclaimInterval <= 0 || c.AttachmentRetention <= 0 {
		return errors.New("RECLAIM_INTERVAL and ATTACHMENT_RETENTION must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) FullAttachmentsPath() string {
	return filepath.Join(c.UploadPath, c.AttachmentsFolder)
}

func (c *Config) Paging() Paging {
	return Paging{DefaultSize: c.PageSizeDefault, MaxSize: c.PageSizeMax}
}

func (c *Config) Reclaim() Reclaim {
	return Reclaim{Interval: c.ReclaimInterval, Retention: c.AttachmentRetention}
}

func (c *Config) TLSDomainList() []string {
	if c.TLSDomains == "" {
		return nil
	}
	return strings.Split(c.TLSDomains, ",")
}
