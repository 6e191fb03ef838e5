package s3

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const presignExpiry = 15 * time.Minute

type ItfS3 interface {
	PresignUrl(fileName string) (string, error)
}

type Options struct {
	Region          string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
}

type s3Client struct {
	client     *s3.S3
	bucketName string
}

func New(opts Options) (ItfS3, error) {
	if opts.BucketName == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	sess, err := newSession(opts)
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		bucketName: opts.BucketName,
	}, nil
}

// PresignUrl accepts either a bare object key or a full S3 object URL.
func (s *s3Client) PresignUrl(fileUrl string) (string, error) {
	key := extractKeyFromS3Url(fileUrl)

	decodedKey, err := url.QueryUnescape(key)
	if err != nil {
		return "", fmt.Errorf("failed to decode S3 key: %w", err)
	}
	if decodedKey == "" {
		return "", errors.New("s3: empty object key")
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(decodedKey),
	})

	urlStr, err := req.Presign(presignExpiry)
	if err != nil {
		return "", err
	}

	return urlStr, nil
}

func extractKeyFromS3Url(fileUrl string) string {
	parts := strings.SplitN(fileUrl, ".com/", 2)
	if len(parts) > 1 {
		return parts[1]
	}
	return strings.TrimPrefix(fileUrl, "/")
}

func newSession(opts Options) (*session.Session, error) {
	cfg := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return sess, nil
}
