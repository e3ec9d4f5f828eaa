// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/utils"
)

const attachmentFolder = "applications"

// StorageService keeps attachment bytes. Without AWS credentials it only fabricates local URLs.
type StorageService struct {
	s3Client s3iface.S3API
	aws      config.AWSConfig
	upload   config.UploadConfig
	localURL string
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewStorageService(cfg *config.Config, log logrus.FieldLogger) (*StorageService, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &StorageService{
		aws:      cfg.AWS,
		upload:   cfg.Upload,
		localURL: fmt.Sprintf("http://%s:%s/uploads", cfg.Server.Host, cfg.Server.Port),
		log:      log.WithField("component", "storage"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	if cfg.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	s.s3Client = s3.New(sess)
	return s, nil
}

// WithS3Client swaps the S3 client, e.g. for a stub in tests.
func (s *StorageService) WithS3Client(client s3iface.S3API) *StorageService {
	s.s3Client = client
	return s
}

// UploadAttachments checks every file against the limits before storing any of them. When a
// later file fails, the ones already stored are removed again.
func (s *StorageService) UploadAttachments(ctx context.Context, p Principal, headers []*multipart.FileHeader) ([]models.FileAttachment, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	if err := s.checkLimits(headers); err != nil {
		return nil, err
	}

	out := make([]models.FileAttachment, 0, len(headers))
	for _, header := range headers {
		att, err := s.store(ctx, header)
		if err != nil {
			s.discard(ctx, out)
			return nil, err
		}
		out = append(out, *att)
	}

	s.log.WithFields(logrus.Fields{"user_id": p.ID, "files": len(out)}).Info("attachments uploaded")
	return out, nil
}

func (s *StorageService) checkLimits(headers []*multipart.FileHeader) error {
	if len(headers) == 0 {
		return newValidationError(fieldError("files", "required", "At least one file is required"))
	}
	if len(headers) > s.upload.MaxFiles {
		return newValidationError(fieldError("files", "max", fmt.Sprintf("At most %d files can be uploaded", s.upload.MaxFiles)))
	}

	var fields []utils.ValidationError
	for _, h := range headers {
		if h.Size > s.upload.MaxFileSize {
			fields = append(fields, fieldError("files", "max",
				fmt.Sprintf("%s: file size %d bytes exceeds maximum allowed size %d bytes", h.Filename, h.Size, s.upload.MaxFileSize)))
		}
		if !s.allowed(h.Filename) {
			fields = append(fields, fieldError("files", "oneof",
				fmt.Sprintf("%s: file type %s is not allowed", h.Filename, strings.ToLower(filepath.Ext(h.Filename)))))
		}
	}
	if len(fields) > 0 {
		return newValidationError(fields...)
	}
	return nil
}

func (s *StorageService) allowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowedType := range s.upload.AllowedTypes {
		if ext == allowedType {
			return true
		}
	}
	return false
}

func (s *StorageService) store(ctx context.Context, header *multipart.FileHeader) (*models.FileAttachment, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, s.upload.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(fileBytes)) > s.upload.MaxFileSize {
		return nil, newValidationError(fieldError("files", "max", header.Filename+": file exceeds the size limit"))
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(fileBytes)
	}

	key := s.generateFileName(header.Filename)
	url, err := s.put(ctx, key, fileBytes, contentType)
	if err != nil {
		return nil, err
	}

	return &models.FileAttachment{
		ID:         key,
		Name:       header.Filename,
		URL:        url,
		Size:       int64(len(fileBytes)),
		Type:       contentType,
		UploadedAt: s.now(),
	}, nil
}

func (s *StorageService) put(ctx context.Context, key string, fileBytes []byte, contentType string) (string, error) {
	if s.s3Client == nil {
		return fmt.Sprintf("%s/%s", s.localURL, key), nil
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		Metadata:      map[string]*string{"Sha256": aws.String(utils.HashBytes(fileBytes))},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.getS3URL(key), nil
}

func (s *StorageService) discard(ctx context.Context, stored []models.FileAttachment) {
	for _, att := range stored {
		if err := s.DeleteFile(ctx, att.ID); err != nil {
			s.log.WithError(err).WithField("key", att.ID).Warn("failed to remove partially uploaded attachment")
		}
	}
}

// DeleteFile removes a stored attachment by key.
func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if s.s3Client == nil {
		s.log.WithField("key", key).Debug("no object store configured, nothing to delete")
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.aws.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *StorageService) generateFileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := s.now().Format("20060102")
	return fmt.Sprintf("%s/%s_%s%s", attachmentFolder, timestamp, uuid.New().String(), ext)
}

func (s *StorageService) getS3URL(key string) string {
	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.aws.CloudFrontURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.aws.S3Bucket, s.aws.Region, key)
}
