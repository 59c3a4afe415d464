package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3UploaderPut(t *testing.T) {
	fake := &fakeS3{}
	u := &S3Uploader{Client: fake, Bucket: "banners", Region: "eu-central-1"}

	url, err := u.Put(context.Background(), "programs/1/banner-x.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://banners.s3.eu-central-1.amazonaws.com/programs/1/banner-x.jpg", url)
	assert.Equal(t, "banners", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "programs/1/banner-x.jpg", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, []byte("jpeg-bytes"), fake.body)

	u.BaseURL = "https://cdn.example.com"
	url, err = u.Put(context.Background(), "k.png", "image/png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.png", url)
}

func TestS3UploaderPutError(t *testing.T) {
	u := &S3Uploader{Client: &fakeS3{err: errors.New("access denied")}, Bucket: "b"}
	_, err := u.Put(context.Background(), "k", "image/png", []byte("x"))
	assert.ErrorContains(t, err, "access denied")
}

func TestLocalUploaderPut(t *testing.T) {
	dir := t.TempDir()
	u := &LocalUploader{Dir: dir, BaseURL: "http://localhost:8080"}

	url, err := u.Put(context.Background(), "programs/7/banner-abc.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/programs/7/banner-abc.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "programs", "7", "banner-abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), got)
}

func TestLocalUploaderStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	u := &LocalUploader{Dir: dir}

	url, err := u.Put(context.Background(), "../../etc/passwd", "text/plain", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/etc/passwd", url)
	_, err = os.Stat(filepath.Join(dir, "etc", "passwd"))
	assert.NoError(t, err)
}

func TestNewFallsBackToLocal(t *testing.T) {
	u, err := New(context.Background(), "", "", t.TempDir(), "")
	require.NoError(t, err)
	assert.IsType(t, &LocalUploader{}, u)
}
