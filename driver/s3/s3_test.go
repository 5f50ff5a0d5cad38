package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/diskkit"
)

// MockClient implements Client over testify mocks.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) UploadPart(ctx context.Context, params *awss3.UploadPartInput, optFns ...func(*awss3.Options)) (*awss3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.UploadPartOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) CreateMultipartUpload(ctx context.Context, params *awss3.CreateMultipartUploadInput, optFns ...func(*awss3.Options)) (*awss3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.CreateMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) CompleteMultipartUpload(ctx context.Context, params *awss3.CompleteMultipartUploadInput, optFns ...func(*awss3.Options)) (*awss3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.CompleteMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) AbortMultipartUpload(ctx context.Context, params *awss3.AbortMultipartUploadInput, optFns ...func(*awss3.Options)) (*awss3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.AbortMultipartUploadOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.HeadObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.ListObjectsV2Output), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) CopyObject(ctx context.Context, params *awss3.CopyObjectInput, optFns ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*awss3.CopyObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPresigner implements Presigner.
type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignGetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*v4.PresignedHTTPRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestDriver(t *testing.T, client Client) *Driver {
	t.Helper()
	d, err := New(client, Config{Bucket: "test-bucket", Prefix: "root"})
	require.NoError(t, err)
	return d
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(new(MockClient), Config{})
	assert.Error(t, err)
}

func TestGetMapsNoSuchKey(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *awss3.GetObjectInput) bool {
		return *in.Bucket == "test-bucket" && *in.Key == "root/missing.txt"
	})).Return(nil, &types.NoSuchKey{}).Once()

	_, err := d.Get(context.Background(), "missing.txt")
	assert.True(t, diskkit.IsNotFound(err))
	client.AssertExpectations(t)
}

func TestGetStreamsBody(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("GetObject", mock.Anything, mock.Anything).Return(&awss3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader("content")),
	}, nil).Once()

	data, err := d.Get(context.Background(), "f/test.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestExistsAbsenceIsSuccess(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

	res, err := d.Exists(context.Background(), "ghost.txt")
	require.NoError(t, err)
	assert.False(t, res.Exists)
}

func TestExistsConnectivityFailure(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout")).Once()

	_, err := d.Exists(context.Background(), "x.txt")
	assert.True(t, errors.Is(err, diskkit.ErrUnavailable))
}

func TestStat(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	now := time.Now()
	client.On("HeadObject", mock.Anything, mock.Anything).Return(&awss3.HeadObjectOutput{
		ContentLength: aws.Int64(1234),
		LastModified:  &now,
	}, nil).Once()

	res, err := d.Stat(context.Background(), "f.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), res.Size)
	assert.Equal(t, now, res.Modified)
}

func TestDeleteAbsentSkipsRemoval(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()

	res, err := d.Delete(context.Background(), "ghost.txt")
	require.NoError(t, err)
	assert.False(t, res.WasDeleted)
	client.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestDeleteExisting(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("HeadObject", mock.Anything, mock.Anything).Return(&awss3.HeadObjectOutput{}, nil).Once()
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *awss3.DeleteObjectInput) bool {
		return *in.Key == "root/real.txt"
	})).Return(&awss3.DeleteObjectOutput{}, nil).Once()

	res, err := d.Delete(context.Background(), "real.txt")
	require.NoError(t, err)
	assert.True(t, res.WasDeleted)
	client.AssertExpectations(t)
}

func TestCopyUsesServerSideCopy(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *awss3.CopyObjectInput) bool {
		return *in.Key == "root/dst.txt" && *in.CopySource == "test-bucket/root/src.txt"
	})).Return(&awss3.CopyObjectOutput{}, nil).Once()

	require.NoError(t, d.Copy(context.Background(), "src.txt", "dst.txt"))
	client.AssertExpectations(t)
}

func TestCopySourceIsURLEncoded(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	// Keys with spaces or reserved characters must be escaped in the
	// copy source while the destination key stays raw.
	client.On("CopyObject", mock.Anything, mock.MatchedBy(func(in *awss3.CopyObjectInput) bool {
		return *in.Key == "root/reports/q1 final.pdf" &&
			*in.CopySource == "test-bucket/root/drafts/q1%20final%20+%20notes%3Fv2.pdf"
	})).Return(&awss3.CopyObjectOutput{}, nil).Once()

	err := d.Copy(context.Background(), "drafts/q1 final + notes?v2.pdf", "reports/q1 final.pdf")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestMovePartialFailure(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("CopyObject", mock.Anything, mock.Anything).Return(&awss3.CopyObjectOutput{}, nil).Once()
	client.On("DeleteObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()

	err := d.Move(context.Background(), "a.txt", "b.txt")
	pm, ok := diskkit.IsPartialMove(err)
	require.True(t, ok, "expected PartialMoveError, got %v", err)
	assert.Equal(t, "a.txt", pm.Src)
	assert.Equal(t, "b.txt", pm.Dst)
}

func TestMoveCompletes(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("CopyObject", mock.Anything, mock.Anything).Return(&awss3.CopyObjectOutput{}, nil).Once()
	client.On("DeleteObject", mock.Anything, mock.Anything).Return(&awss3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, d.Move(context.Background(), "a.txt", "b.txt"))
}

func TestFlatListPagination(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *awss3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil && *in.Prefix == "root/f/te"
	})).Return(&awss3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents:              []types.Object{{Key: aws.String("root/f/test.txt")}},
	}, nil).Once()

	client.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *awss3.ListObjectsV2Input) bool {
		return in.ContinuationToken != nil && *in.ContinuationToken == "token"
	})).Return(&awss3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("root/f/texts/a.md")}},
	}, nil).Once()

	entries, err := diskkit.CollectList(d.FlatList(context.Background(), "f/te"))
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"f/test.txt", "f/texts/a.md"}, paths)
	client.AssertExpectations(t)
}

func TestFlatListEarlyStopFetchesOnePage(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("ListObjectsV2", mock.Anything, mock.Anything).Return(&awss3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents: []types.Object{
			{Key: aws.String("root/a")},
			{Key: aws.String("root/b")},
		},
	}, nil).Once()

	for range d.FlatList(context.Background(), "") {
		break
	}
	// Second page must never be requested.
	client.AssertNumberOfCalls(t, "ListObjectsV2", 1)
}

func TestFlatListError(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("ListObjectsV2", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	_, err := diskkit.CollectList(d.FlatList(context.Background(), ""))
	assert.True(t, errors.Is(err, diskkit.ErrUnavailable))
}

func TestURLComposition(t *testing.T) {
	d, err := New(new(MockClient), Config{Bucket: "b", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/a/x.png", d.URL("/a/x.png"))

	d, err = New(new(MockClient), Config{Bucket: "b", BaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a/x.png", d.URL("a/x.png"))
}

func TestSignedURL(t *testing.T) {
	client := new(MockClient)
	presigner := new(MockPresigner)
	d, err := New(client, Config{Bucket: "test-bucket", Presigner: presigner})
	require.NoError(t, err)

	presigner.On("PresignGetObject", mock.Anything, mock.MatchedBy(func(in *awss3.GetObjectInput) bool {
		return *in.Key == "secret.pdf"
	})).Return(&v4.PresignedHTTPRequest{URL: "https://signed.example.com/secret.pdf?X-Amz-Signature=abc"}, nil).Once()

	res, err := d.SignedURL(context.Background(), "secret.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, res.SignedURL, "X-Amz-Signature")
	assert.Equal(t, 15*time.Minute, res.Expiry)
}

func TestSignedURLWithoutPresigner(t *testing.T) {
	d, err := New(new(MockClient), Config{Bucket: "b"})
	require.NoError(t, err)

	_, err = d.SignedURL(context.Background(), "x.txt", time.Minute)
	assert.True(t, errors.Is(err, diskkit.ErrSigning))
}

func TestPutUploads(t *testing.T) {
	client := new(MockClient)
	d := newTestDriver(t, client)

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *awss3.PutObjectInput) bool {
		return *in.Bucket == "test-bucket" && *in.Key == "root/new.txt"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*awss3.PutObjectInput)
		io.ReadAll(in.Body)
	}).Return(&awss3.PutObjectOutput{}, nil).Once()

	err := d.Put(context.Background(), "new.txt", strings.NewReader("content"),
		diskkit.WithContentType("text/plain"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}
