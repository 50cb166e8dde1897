package storage

import (
	"bytes"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/nicolagi/hintful/internal/config"
	"github.com/pkg/errors"
)

type s3Store struct {
	client *s3.S3
	bucket string
}

var _ Store = (*s3Store)(nil)

func s3Credentials(c *config.C) *credentials.Credentials {
	if c.S3AccessKey != "" && c.S3SecretKey != "" {
		return credentials.NewStaticCredentials(c.S3AccessKey, c.S3SecretKey, "")
	}
	return credentials.NewSharedCredentials("", c.S3Profile)
}

func newS3Store(c *config.C, bucket string) (*s3Store, error) {
	const maxRetries = 4
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(c.S3Region),
		Credentials: s3Credentials(c),
		MaxRetries:  aws.Int(maxRetries),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &s3Store{
		client: s3.New(sess),
		bucket: bucket,
	}, nil
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
		return true
	}
	if rfErr, ok := err.(awserr.RequestFailure); ok {
		return rfErr.StatusCode() == http.StatusNotFound
	}
	return false
}

func (s *s3Store) Get(key Key) (io.ReadCloser, error) {
	output, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "bucket=%q key=%q err=%+v", s.bucket, key, err)
		}
		return nil, errors.WithStack(err)
	}
	return output.Body, nil
}

func (s *s3Store) Put(key Key, value []byte) error {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(key)),
		Body:   bytes.NewReader(value),
	})
	return errors.WithStack(err)
}
