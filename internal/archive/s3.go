package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of the S3 client the archiver uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes objects to an S3 bucket; container is the bucket name.
type S3 struct {
	client PutObjectAPI
}

// NewS3 constructs an S3 archiver. client is usually *s3.Client.
func NewS3(client PutObjectAPI) *S3 {
	return &S3{client: client}
}

// Put uploads payload to bucket container under key with the given content type.
// An existing object at key is overwritten.
//
// Returns:
//   - error: the PutObject failure, wrapped with bucket and key.
func (s *S3) Put(ctx context.Context, container, key string, payload []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(container),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", container, key, err)
	}
	return nil
}
