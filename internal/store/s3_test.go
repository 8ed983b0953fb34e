package store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"nightlies/internal/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers GetObject/PutObject from a map, the way S3 would.
type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	failGet error
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.NewRequestFailure(
			awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil),
			http.StatusNotFound, "req-1")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func newTestS3(prefix string) (*S3Store, *fakeS3) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	return &S3Store{client: fake, bucket: "nightlies", prefix: prefix}, fake
}

func TestS3Store_PutAndGet(t *testing.T) {
	st, fake := newTestS3("builds/")
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, model.CurrentKey, []byte("v1.2.3")))
	require.NoError(t, st.Put(ctx, "v1.2.3.zip", []byte("PK")))
	assert.Contains(t, fake.objects, "nightlies/builds/CURRENT")

	cur, err := st.Get(ctx, model.CurrentKey, model.KindText)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", cur.Text)

	asset, err := st.Get(ctx, "v1.2.3.zip", model.KindStream)
	require.NoError(t, err)
	assert.Equal(t, "PK", readBody(t, asset))
}

func TestS3Store_NotFound(t *testing.T) {
	st, _ := newTestS3("")
	_, err := st.Get(context.Background(), "missing.asc", model.KindStream)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_OtherErrorsPropagate(t *testing.T) {
	st, fake := newTestS3("")
	fake.failGet = awserr.NewRequestFailure(awserr.New("AccessDenied", "denied", nil), http.StatusForbidden, "req-2")

	_, err := st.Get(context.Background(), "build.zip", model.KindStream)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "AccessDenied")
}
