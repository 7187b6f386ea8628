package persistent

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hikari-systems/image-service/pkg/s3client"
)

type ImageBlobRepo struct {
	*s3client.S3Client
	bucket string
}

func NewImageBlobRepo(s3c *s3client.S3Client, bucket string) *ImageBlobRepo {
	return &ImageBlobRepo{s3c, bucket}
}

// UploadFile streams a local file to the bucket under the exact key.
// No retry: a failure surfaces immediately to the caller.
func (r *ImageBlobRepo) UploadFile(ctx context.Context, key, localPath, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("ImageBlobRepo - UploadFile - os.Open: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("ImageBlobRepo - UploadFile - f.Stat: %w", err)
	}

	return r.Upload(ctx, key, f, contentType, stat.Size())
}

func (r *ImageBlobRepo) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("ImageBlobRepo - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}
