package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclabs561/runctl/pkg/errdefs"
	"github.com/arclabs561/runctl/pkg/services/retry"
)

// memS3 is an in-memory bucket implementing the slice of the S3 API the
// store uses.
type memS3 struct {
	objects map[string][]byte
	err     error
}

func newMemS3() *memS3 {
	return &memS3{objects: make(map[string][]byte)}
}

func (m *memS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[awssdk.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.objects[awssdk.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := &s3.ListObjectsV2Output{}
	prefix := awssdk.ToString(params.Prefix)
	for key := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out.Contents = append(out.Contents, s3types.Object{Key: awssdk.String(key)})
		}
	}
	return out, nil
}

func newTestStore(client s3API) *CheckpointStore {
	return &CheckpointStore{client: client, bucket: "ml-checkpoints", retry: retry.NoRetry{}}
}

func TestCheckpointStore_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores under the job prefix", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "epoch-3.pt")
		require.NoError(t, os.WriteFile(local, []byte("weights"), 0o644))

		mem := newMemS3()
		require.NoError(t, newTestStore(mem).Upload(ctx, "job-42", local))

		assert.Equal(t, []byte("weights"), mem.objects["checkpoints/job-42/epoch-3.pt"])
	})

	t.Run("empty job id is rejected", func(t *testing.T) {
		err := newTestStore(newMemS3()).Upload(ctx, "", "epoch-3.pt")
		assert.True(t, errdefs.IsValidation(err))
	})

	t.Run("missing local file fails without an API call", func(t *testing.T) {
		mem := newMemS3()
		err := newTestStore(mem).Upload(ctx, "job-42", filepath.Join(t.TempDir(), "absent.pt"))
		require.Error(t, err)
		assert.Empty(t, mem.objects)
	})

	t.Run("API errors are wrapped as provider errors", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "epoch-3.pt")
		require.NoError(t, os.WriteFile(local, []byte("weights"), 0o644))

		mem := newMemS3()
		mem.err = errors.New("SlowDown")
		err := newTestStore(mem).Upload(ctx, "job-42", local)
		assert.True(t, errdefs.IsRetryable(err))
	})
}

func TestCheckpointStore_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips through the bucket", func(t *testing.T) {
		mem := newMemS3()
		mem.objects["checkpoints/job-42/epoch-3.pt"] = []byte("weights")

		dest := filepath.Join(t.TempDir(), "restored.pt")
		require.NoError(t, newTestStore(mem).Download(ctx, "job-42", "epoch-3.pt", dest))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, []byte("weights"), data)
	})

	t.Run("empty job id is rejected", func(t *testing.T) {
		err := newTestStore(newMemS3()).Download(ctx, "", "epoch-3.pt", "out.pt")
		assert.True(t, errdefs.IsValidation(err))
	})
}

func TestCheckpointStore_List(t *testing.T) {
	ctx := context.Background()

	mem := newMemS3()
	mem.objects["checkpoints/job-42/epoch-1.pt"] = []byte("a")
	mem.objects["checkpoints/job-42/epoch-2.pt"] = []byte("b")
	mem.objects["checkpoints/job-7/epoch-1.pt"] = []byte("c")

	names, err := newTestStore(mem).List(ctx, "job-42")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"epoch-1.pt", "epoch-2.pt"}, names)

	_, err = newTestStore(mem).List(ctx, "")
	assert.True(t, errdefs.IsValidation(err))
}

func TestCheckpointKey(t *testing.T) {
	assert.Equal(t, "checkpoints/job-42/epoch-1.pt", checkpointKey("job-42", "epoch-1.pt"))
	assert.Equal(t, "checkpoints/job-42/", checkpointKey("job-42", ""))
}
