// Package filesvc implements the file store port on S3, with a local disk
// variant for tests and development.
package filesvc

import (
	"bytes"
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
)

type s3Service struct {
	client *s3.Client
	bucket string
	region string
}

var _ core.FileStore = (*s3Service)(nil)

func NewS3Service(ctx context.Context, conf *core.Config) (*s3Service, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.AWS.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	return &s3Service{
		client: s3.NewFromConfig(cfg),
		bucket: conf.AWS.Bucket,
		region: conf.AWS.Region,
	}, nil
}

func (svc *s3Service) Save(ctx context.Context, key, contentType string, content []byte) (string, error) {
	_, err := svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &svc.bucket,
		Key:         &key,
		Body:        bytes.NewReader(content),
		ContentType: &contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "uploading file")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", svc.bucket, svc.region, key), nil
}

func (svc *s3Service) Delete(ctx context.Context, key string) error {
	_, err := svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &svc.bucket,
		Key:    &key,
	})
	return errors.Wrap(err, "deleting file")
}
