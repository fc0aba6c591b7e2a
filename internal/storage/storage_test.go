package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveUsesMillisPrefix(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	path, err := store.Save(context.Background(), 1, "r.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, filepath.ToSlash(dir)+"/1700000000123-r.pdf", path)
	data, err := os.ReadFile(filepath.Join(dir, "1700000000123-r.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestLocalStore_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	store.now = func() time.Time { return time.UnixMilli(42) }

	path, err := store.Save(context.Background(), 1, "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(dir)+"/42-passwd", path)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalStore_RemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	_, err := store.Save(context.Background(), 1, "cv.pdf", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "cv.pdf", baseName(`C:\Users\alice\cv.pdf`))
	assert.Equal(t, "upload", baseName(""))
	assert.Equal(t, "a_b.pdf", baseName("a?b.pdf"))
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Save(t *testing.T) {
	fake := &fakePutter{}
	store := &S3Store{client: fake, bucket: "resumes-bucket"}

	uri, err := store.Save(context.Background(), 7, "cv.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	key := aws.ToString(fake.in.Key)
	assert.Equal(t, "resumes-bucket", aws.ToString(fake.in.Bucket))
	assert.True(t, strings.HasPrefix(key, "resumes/7/"))
	assert.True(t, strings.HasSuffix(key, "-cv.pdf"))
	assert.Equal(t, "s3://resumes-bucket/"+key, uri)
	assert.Equal(t, "data", fake.body)
}

func TestS3Store_SaveError(t *testing.T) {
	store := &S3Store{client: &fakePutter{err: errors.New("access denied")}, bucket: "b"}

	_, err := store.Save(context.Background(), 7, "cv.pdf", strings.NewReader("data"))
	assert.ErrorContains(t, err, "access denied")
}
