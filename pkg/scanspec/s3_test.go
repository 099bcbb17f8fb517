package scanspec_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scankit/pkg/scanspec"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func keyIs(key string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "machines" && aws.ToString(in.Key) == key
	})
}

func object(body string) *s3.GetObjectOutput {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}
}

func newS3Source(t *testing.T, client *MockS3Client, prefix string) *scanspec.S3Source {
	t.Helper()
	src, err := scanspec.NewS3Source(context.Background(), scanspec.S3Config{
		Bucket: "machines",
		Region: "us-east-1",
		Prefix: prefix,
	}, scanspec.WithS3Client(client))
	require.NoError(t, err)
	return src
}

func TestNewS3Source(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		src, err := scanspec.NewS3Source(context.Background(), scanspec.S3Config{
			Bucket:      "machines",
			Region:      "us-east-1",
			AccessKeyID: "test-key",
			SecretKey:   "test-secret",
		})
		require.NoError(t, err)
		assert.NotNil(t, src)
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()
		src, err := scanspec.NewS3Source(context.Background(), scanspec.S3Config{
			Bucket:         "machines",
			Region:         "us-east-1",
			Endpoint:       "http://localhost:9000",
			ForcePathStyle: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, src)
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		src, err := scanspec.NewS3Source(context.Background(), scanspec.S3Config{Region: "us-east-1"})
		assert.ErrorIs(t, err, scanspec.ErrInvalidConfig)
		assert.Nil(t, src)
	})

	t.Run("missing region", func(t *testing.T) {
		t.Parallel()
		src, err := scanspec.NewS3Source(context.Background(), scanspec.S3Config{Bucket: "machines"})
		assert.ErrorIs(t, err, scanspec.ErrInvalidConfig)
		assert.Nil(t, src)
	})
}

func TestS3SourceOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("exact key under prefix", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", ctx, keyIs("prod/literals.json"), mock.Anything).Return(object(minimalDoc), nil)

		rc, err := newS3Source(t, client, "/prod/").Open(ctx, "literals.json")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, minimalDoc, string(data))
		client.AssertExpectations(t)
	})

	t.Run("extension fallback", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", ctx, keyIs("literals.yaml"), mock.Anything).
			Return(nil, &types.NoSuchKey{Message: aws.String("no such key")})
		client.On("GetObject", ctx, keyIs("literals.yml"), mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "NotFound"})
		client.On("GetObject", ctx, keyIs("literals.json"), mock.Anything).Return(object("{}"), nil)

		rc, err := newS3Source(t, client, "").Open(ctx, "literals")
		require.NoError(t, err)
		rc.Close()
		client.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", ctx, mock.Anything, mock.Anything).
			Return(nil, &types.NoSuchKey{Message: aws.String("no such key")})

		_, err := newS3Source(t, client, "").Open(ctx, "missing")
		assert.ErrorIs(t, err, scanspec.ErrNotFound)
		client.AssertNumberOfCalls(t, "GetObject", 3)
	})

	t.Run("invalid path", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		src := newS3Source(t, client, "")
		for _, name := range []string{"", "../secret.yaml", "a/../../b.yaml"} {
			_, err := src.Open(ctx, name)
			assert.ErrorIs(t, err, scanspec.ErrInvalidPath, name)
		}
		client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
	})

	errorCases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no such bucket", err: &types.NoSuchBucket{}, want: scanspec.ErrBucketNotFound},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: scanspec.ErrAccessDenied},
		{name: "slow down", err: &smithy.GenericAPIError{Code: "SlowDown"}, want: scanspec.ErrSourceUnavailable},
		{name: "request timeout", err: &smithy.GenericAPIError{Code: "RequestTimeout"}, want: scanspec.ErrOperationTimeout},
		{name: "deadline", err: context.DeadlineExceeded, want: scanspec.ErrOperationTimeout},
		{name: "canceled", err: context.Canceled, want: scanspec.ErrOperationCanceled},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := &MockS3Client{}
			client.On("GetObject", ctx, mock.Anything, mock.Anything).Return(nil, tc.err)

			_, err := newS3Source(t, client, "").Open(ctx, "doc.yaml")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("unclassified error keeps cause", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("connection reset")
		client := &MockS3Client{}
		client.On("GetObject", ctx, mock.Anything, mock.Anything).Return(nil, cause)

		_, err := newS3Source(t, client, "").Open(ctx, "doc.yaml")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "get operation failed")
	})
}

func TestLoadFromS3(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &MockS3Client{}
	client.On("GetObject", ctx, keyIs("docs/basic.yaml"), mock.Anything).Return(object(minimalDoc), nil)

	lib, err := scanspec.Load(ctx, newS3Source(t, client, "docs"), "basic", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first-char"}, lib.Names())
}
