package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/logger"
)

// ImageStore persists a client-submitted data-URI image and returns a
// retrievable URL.
type ImageStore interface {
	StoreDataURI(ctx context.Context, dataURI, keyPrefix string) (string, error)
}

// ImageService stores decoded images in S3.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// ParseDataURI decodes a data:image/<ext>;base64,<payload> string into the
// raw image bytes and the declared extension.
func ParseDataURI(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, "data:image/") {
		return nil, "", NewValidationError("image", "expected a data:image base64 URI")
	}
	meta, payload, ok := strings.Cut(s, ";base64,")
	if !ok || payload == "" {
		return nil, "", NewValidationError("image", "malformed data URI")
	}
	ext := strings.TrimPrefix(meta, "data:image/")
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		return nil, "", NewValidationError("image", "malformed image type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", NewValidationError("image", "invalid base64 image payload")
	}
	return data, ext, nil
}

// StoreDataURI decodes the submitted image and uploads it under keyPrefix.
// The stored filename is derived from the declared extension.
func (s *ImageService) StoreDataURI(ctx context.Context, dataURI, keyPrefix string) (string, error) {
	data, ext, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", keyPrefix, uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.s3Config.ObjectURL(key)
	logger.Info("uploaded image", zap.String("key", key))
	return url, nil
}
