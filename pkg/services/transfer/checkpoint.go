// Package transfer moves training artifacts between the local machine
// and S3: checkpoint upload/download and listing per training job. Keys
// are laid out as checkpoints/<job>/<file>.
package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/services/retry"
)

const checkpointPrefix = "checkpoints"

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// CheckpointStore reads and writes training checkpoints in a single
// S3 bucket.
type CheckpointStore struct {
	client s3API
	bucket string
	retry  retry.Policy
}

func NewCheckpointStore(cfg awssdk.Config, bucket string) *CheckpointStore {
	return &CheckpointStore{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		retry:  retry.ForCloudAPI(),
	}
}

// Upload stores a local checkpoint file under the job's prefix.
func (c *CheckpointStore) Upload(ctx context.Context, jobID, localPath string) error {
	if jobID == "" {
		return &errdefs.ValidationError{Field: "job id", Reason: "must not be empty"}
	}

	key := checkpointKey(jobID, filepath.Base(localPath))
	return c.retry.Execute(ctx, func(ctx context.Context) error {
		file, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("failed to open checkpoint %s: %w", localPath, err)
		}
		defer file.Close()

		_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: awssdk.String(c.bucket),
			Key:    awssdk.String(key),
			Body:   file,
		})
		if err != nil {
			return wrapS3Error(fmt.Sprintf("upload %s", key), err)
		}
		return nil
	})
}

// Download fetches a checkpoint by name into destPath.
func (c *CheckpointStore) Download(ctx context.Context, jobID, name, destPath string) error {
	if jobID == "" {
		return &errdefs.ValidationError{Field: "job id", Reason: "must not be empty"}
	}

	key := checkpointKey(jobID, name)
	return c.retry.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: awssdk.String(c.bucket),
			Key:    awssdk.String(key),
		})
		if err != nil {
			return wrapS3Error(fmt.Sprintf("download %s", key), err)
		}
		defer resp.Body.Close()

		file, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", destPath, err)
		}
		defer file.Close()

		if _, err := io.Copy(file, resp.Body); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}

// List returns checkpoint names stored for the job.
func (c *CheckpointStore) List(ctx context.Context, jobID string) ([]string, error) {
	if jobID == "" {
		return nil, &errdefs.ValidationError{Field: "job id", Reason: "must not be empty"}
	}

	prefix := checkpointKey(jobID, "")
	resp, err := retry.Do(ctx, c.retry, func(ctx context.Context) (*s3.ListObjectsV2Output, error) {
		out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket: awssdk.String(c.bucket),
			Prefix: awssdk.String(prefix),
		})
		if err != nil {
			return nil, wrapS3Error(fmt.Sprintf("list %s", prefix), err)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Contents))
	for _, obj := range resp.Contents {
		names = append(names, strings.TrimPrefix(awssdk.ToString(obj.Key), prefix))
	}
	return names, nil
}

func checkpointKey(jobID, name string) string {
	if name == "" {
		return path.Join(checkpointPrefix, jobID) + "/"
	}
	return path.Join(checkpointPrefix, jobID, name)
}

func wrapS3Error(op string, err error) error {
	return &errdefs.CloudProviderError{
		Provider: "aws",
		Message:  fmt.Sprintf("s3: failed to %s", op),
		Err:      err,
	}
}
