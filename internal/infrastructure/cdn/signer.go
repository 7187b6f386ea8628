package cdn

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hikari-systems/image-service/config"
	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/hikari-systems/image-service/pkg/s3client"
)

// Signer resolves storage keys to fetchable URLs. Three modes,
// depending on configuration:
//   - CDN URL + key pair: time-limited CloudFront-signed URLs
//   - CDN URL only: plain unsigned CDN URLs
//   - no CDN URL: S3 presigned GET URLs against the bucket
type Signer struct {
	cdnURL string
	expiry time.Duration
	bucket string

	urlSigner *sign.URLSigner
	presign   *s3.PresignClient

	logger logger.Interface
}

func NewSigner(cfg config.CDN, s3c *s3client.S3Client, bucket string, l logger.Interface) (*Signer, error) {
	s := &Signer{
		cdnURL: strings.TrimRight(cfg.URL, "/"),
		expiry: cfg.Expiry,
		bucket: bucket,
		logger: l,
	}

	if cfg.KeyPairID != "" {
		keyText := strings.TrimSpace(cfg.PrivateKey)
		if keyText == "" && cfg.PrivateKeyFile != "" {
			raw, err := os.ReadFile(cfg.PrivateKeyFile)
			if err != nil {
				return nil, fmt.Errorf("Signer - NewSigner - os.ReadFile: %w", err)
			}
			keyText = strings.TrimSpace(string(raw))
		}

		if keyText != "" {
			privKey, err := sign.LoadPEMPrivKey(strings.NewReader(keyText))
			if err != nil {
				return nil, fmt.Errorf("Signer - NewSigner - sign.LoadPEMPrivKey: %w", err)
			}

			s.urlSigner = sign.NewURLSigner(cfg.KeyPairID, privKey)
		}
	}

	if s.cdnURL == "" {
		if s3c == nil {
			return nil, fmt.Errorf("Signer - NewSigner - neither CDN url nor S3 client configured")
		}

		s.presign = s3.NewPresignClient(s3c.Client)
	}

	return s, nil
}

func (s *Signer) SignedURL(ctx context.Context, key string) (string, error) {
	if s.presign != nil {
		out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(s.expiry))
		if err != nil {
			return "", fmt.Errorf("Signer - SignedURL - s.presign.PresignGetObject: %w", err)
		}

		return out.URL, nil
	}

	fullURL := s.cdnURL + "/" + key
	if s.urlSigner == nil {
		return fullURL, nil
	}

	signed, err := s.urlSigner.Sign(fullURL, time.Now().UTC().Add(s.expiry))
	if err != nil {
		return "", fmt.Errorf("Signer - SignedURL - s.urlSigner.Sign: %w", err)
	}

	return signed, nil
}
