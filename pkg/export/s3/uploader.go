// Package s3 выгружает снапшоты серий (XLSX/JSON) в S3-совместимое
// хранилище — для того чтобы поделиться графиком вне просмотрщика.
package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config — настройки выгрузки снапшотов
type Config struct {
	// Bucket - имя бакета (обязательно для включения выгрузки)
	Bucket string `yaml:"bucket"`

	// Region - регион AWS
	Region string `yaml:"region"`

	// Prefix - префикс ключей внутри бакета
	Prefix string `yaml:"prefix"`

	// Endpoint - нестандартный endpoint (MinIO, localstack); пусто = AWS
	Endpoint string `yaml:"endpoint"`

	// AccessKey/SecretKey - статические креды; пусто = стандартная
	// цепочка провайдеров AWS SDK
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Enabled сообщает, настроена ли выгрузка
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Uploader выгружает снапшоты в S3 через multipart manager
type Uploader struct {
	uploader *manager.Uploader
	cfg      Config
}

// NewUploader создает uploader по конфигурации
func NewUploader(ctx context.Context, cfg Config) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3: bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO/localstack не понимают virtual-host style
		}
	})

	return &Uploader{
		uploader: manager.NewUploader(client),
		cfg:      cfg,
	}, nil
}

// UploadSnapshot выгружает один снапшот и возвращает его location.
// Ключ дополняется префиксом из конфигурации.
func (u *Uploader) UploadSnapshot(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	fullKey := key
	if u.cfg.Prefix != "" {
		fullKey = path.Join(u.cfg.Prefix, key)
	}

	out, err := u.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(fullKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: upload %s: %w", fullKey, err)
	}
	return out.Location, nil
}

// SnapshotKey строит ключ снапшота: <table>/<table>-<timestamp>.<ext>
func SnapshotKey(table, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s-%s.%s", table, table, now.UTC().Format("20060102T150405Z"), ext)
}
