package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"ratehousing_backend/pkg/utils/image"
	"ratehousing_backend/pkg/utils/validation"
)

// S3Storage uploads photos to a public bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Storage(bucket, region string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	return &S3Storage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

func (s *S3Storage) Save(file *multipart.FileHeader) (string, error) {
	if err := validation.ValidateImage(file); err != nil {
		return "", err
	}

	buf, ext, err := image.Process(file)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reviews/%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(image.ContentType(ext)),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3Storage) Delete(url string) error {
	parts := strings.SplitN(url, "/", 4)
	if len(parts) < 4 {
		return fmt.Errorf("invalid S3 url: %s", url)
	}
	key := parts[3]

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	return err
}
