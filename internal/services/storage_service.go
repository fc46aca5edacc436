// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/armanrma7/agronetixbeck-sub000/internal/config"
)

// StorageService stores announcement images. The lifecycle core only ever
// sees the opaque keys it returns.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

var allowedImageTypes = []string{".jpg", ".jpeg", ".png", ".webp"}

const maxImageSize = 5 << 20 // 5 MB

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// No S3 credentials: keys are issued but uploads are logged only,
		// for local development.
		return &StorageService{config: cfg}, nil
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

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// Upload stores the given files and returns their storage keys.
func (s *StorageService) Upload(files []*multipart.FileHeader) ([]string, error) {
	keys := make([]string, 0, len(files))

	for _, header := range files {
		if header.Size > maxImageSize {
			return nil, fmt.Errorf("file %s exceeds the %d byte limit", header.Filename, maxImageSize)
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, t := range allowedImageTypes {
			if ext == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("file type %s is not allowed", ext)
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		fileBytes, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}

		key := fmt.Sprintf("announcements/%s/%s%s",
			time.Now().Format("2006/01"), uuid.New().String(), ext)

		if s.s3Client != nil {
			_, err = s.s3Client.PutObject(&s3.PutObjectInput{
				Bucket:        aws.String(s.config.AWS.S3Bucket),
				Key:           aws.String(key),
				Body:          bytes.NewReader(fileBytes),
				ContentType:   aws.String(header.Header.Get("Content-Type")),
				ContentLength: aws.Int64(int64(len(fileBytes))),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to upload %s: %w", header.Filename, err)
			}
		} else {
			logrus.WithField("key", key).Debug("S3 not configured, skipping upload")
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Delete removes stored objects. Failures are logged; removed images are
// cleaned up best-effort and never fail the calling operation.
func (s *StorageService) Delete(keys []string) {
	if s.s3Client == nil {
		return
	}

	for _, key := range keys {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			logrus.WithField("key", key).WithError(err).Warn("Failed to delete stored image")
		}
	}
}

// Resolve maps storage keys to display URLs.
func (s *StorageService) Resolve(keys []string) []string {
	urls := make([]string, len(keys))
	for i, key := range keys {
		if s.config.AWS.CloudFrontURL != "" {
			urls[i] = fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
		} else {
			urls[i] = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
				s.config.AWS.S3Bucket, s.config.AWS.Region, key)
		}
	}
	return urls
}
