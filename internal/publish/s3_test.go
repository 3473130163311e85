package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/propsearch-mcp/pkg/export"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestPublisher_Publish(t *testing.T) {
	api := &fakeS3{}
	p := New(api, Config{Bucket: "exports-bucket", Prefix: "/exports/", Region: "us-west-2"})

	art := &export.Artifact{
		Data:      []byte("a,b\n1,2\n"),
		Filename:  "property_search_s1_20250314_092653.csv",
		MediaType: export.MediaTypeCSV,
	}
	got, err := p.Publish(context.Background(), "u1", art)
	require.NoError(t, err)

	assert.Equal(t, "exports/u1/property_search_s1_20250314_092653.csv", got.Key)
	assert.Equal(t, "https://exports-bucket.s3.us-west-2.amazonaws.com/exports/u1/property_search_s1_20250314_092653.csv", got.URL)
	assert.Equal(t, "exports-bucket", aws.ToString(api.input.Bucket))
	assert.Equal(t, export.MediaTypeCSV, aws.ToString(api.input.ContentType))
	assert.Equal(t, art.Data, api.body)
}

func TestPublisher_Key(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		user   string
		want   string
	}{
		{"prefix and user", "exports", "u1", "exports/u1/f.pdf"},
		{"no prefix", "", "u1", "u1/f.pdf"},
		{"no user", "exports", "", "exports/f.pdf"},
		{"nested prefix", "a/b/", "u1", "a/b/u1/f.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&fakeS3{}, Config{Bucket: "b", Prefix: tt.prefix})
			assert.Equal(t, tt.want, p.Key(tt.user, "f.pdf"))
		})
	}
}

func TestPublisher_PublishError(t *testing.T) {
	p := New(&fakeS3{err: errors.New("access denied")}, Config{Bucket: "b"})
	_, err := p.Publish(context.Background(), "u1", &export.Artifact{Filename: "f.json"})
	assert.ErrorContains(t, err, "access denied")
}

func TestNewFromEnv_RequiresBucket(t *testing.T) {
	_, err := NewFromEnv(context.Background(), Config{})
	assert.Error(t, err)
}
