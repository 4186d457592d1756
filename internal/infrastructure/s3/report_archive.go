// Package s3 archiva los reportes PDF en un bucket S3 (o compatible, p. ej. MinIO).
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/pkg/config"
)

var _ ports.ReportArchive = (*ReportArchive)(nil)

// ReportArchive guarda cada reporte como un objeto del bucket configurado.
type ReportArchive struct {
	client *s3.Client
	bucket string
}

// NewReportArchive carga credenciales por la cadena por defecto de AWS
// (variables AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, perfil, rol).
func NewReportArchive(ctx context.Context, cfg config.ReportsConfig) (*ReportArchive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket requerido")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3: cargar configuración AWS: %w", err)
	}
	return NewReportArchiveWithConfig(awsCfg, cfg), nil
}

// NewReportArchiveWithConfig construye el archivo sobre una configuración AWS ya cargada.
func NewReportArchiveWithConfig(awsCfg aws.Config, cfg config.ReportsConfig) *ReportArchive {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &ReportArchive{client: client, bucket: cfg.Bucket}
}

// Store sube el contenido con PutObject y devuelve la clave usada.
func (a *ReportArchive) Store(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return key, nil
}
