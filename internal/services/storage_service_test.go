package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ipr-backend/internal/config"
)

type stubS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deletes []string
	failAt  int // 1-based put that fails; 0 never fails
}

func (s *stubS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if s.failAt > 0 && len(s.puts)+1 == s.failAt {
		return nil, errors.New("s3 unavailable")
	}
	s.puts = append(s.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	s.deletes = append(s.deletes, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func testStorageConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: "8080"},
		AWS:    config.AWSConfig{Region: "us-east-1", S3Bucket: "ipr-test"},
		Upload: config.UploadConfig{
			MaxFiles:     2,
			MaxFileSize:  1024,
			AllowedTypes: []string{".pdf", ".docx"},
		},
	}
}

// fileHeaders builds real multipart headers by parsing a multipart body.
func fileHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/v1/uploads", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"]
}

func TestUploadAttachmentsLocal(t *testing.T) {
	f := newFixture(t)
	storage, err := NewStorageService(testStorageConfig(), quietLogger())
	require.NoError(t, err)

	atts, err := storage.UploadAttachments(context.Background(), f.applicant, fileHeaders(t, map[string]string{"Claims.PDF": "%PDF-1.4 claims"}))
	require.NoError(t, err)
	require.Len(t, atts, 1)

	assert.Equal(t, "Claims.PDF", atts[0].Name)
	assert.EqualValues(t, len("%PDF-1.4 claims"), atts[0].Size)
	assert.True(t, strings.HasPrefix(atts[0].URL, "http://localhost:8080/uploads/applications/"))
	assert.True(t, strings.HasSuffix(atts[0].ID, ".pdf"))
}

func TestUploadAttachmentsToS3(t *testing.T) {
	f := newFixture(t)
	stub := &stubS3{}
	storage, err := NewStorageService(testStorageConfig(), quietLogger())
	require.NoError(t, err)
	storage.WithS3Client(stub)

	atts, err := storage.UploadAttachments(context.Background(), f.applicant, fileHeaders(t, map[string]string{"spec.docx": "docx bytes"}))
	require.NoError(t, err)
	require.Len(t, stub.puts, 1)
	assert.Equal(t, "ipr-test", aws.StringValue(stub.puts[0].Bucket))
	assert.Equal(t, atts[0].ID, aws.StringValue(stub.puts[0].Key))
	assert.Equal(t, "https://ipr-test.s3.us-east-1.amazonaws.com/"+atts[0].ID, atts[0].URL)
	assert.NotEmpty(t, aws.StringValue(stub.puts[0].Metadata["Sha256"]))
}

func TestUploadAttachmentsLimits(t *testing.T) {
	f := newFixture(t)
	stub := &stubS3{}
	storage, err := NewStorageService(testStorageConfig(), quietLogger())
	require.NoError(t, err)
	storage.WithS3Client(stub)

	_, err = storage.UploadAttachments(context.Background(), f.applicant, fileHeaders(t, map[string]string{"a.pdf": "a", "b.pdf": "b", "c.pdf": "c"}))
	assert.ErrorIs(t, err, ErrValidation, "too many files")

	_, err = storage.UploadAttachments(context.Background(), f.applicant, fileHeaders(t, map[string]string{"run.exe": "MZ"}))
	assert.ErrorIs(t, err, ErrValidation, "disallowed type")

	_, err = storage.UploadAttachments(context.Background(), f.applicant, fileHeaders(t, map[string]string{"big.pdf": strings.Repeat("x", 2048)}))
	assert.ErrorIs(t, err, ErrValidation, "too large")

	_, err = storage.UploadAttachments(context.Background(), f.applicant, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = storage.UploadAttachments(context.Background(), Principal{}, fileHeaders(t, map[string]string{"a.pdf": "a"}))
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, stub.puts, "nothing stored when a check fails")
}

func TestUploadAttachmentsRemovesPartialUploads(t *testing.T) {
	f := newFixture(t)
	stub := &stubS3{failAt: 2}
	storage, err := NewStorageService(testStorageConfig(), quietLogger())
	require.NoError(t, err)
	storage.WithS3Client(stub)

	_, err = storage.UploadAttachments(context.Background(), f.applicant, fileHeaders(t, map[string]string{"a.pdf": "a", "b.pdf": "b"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)

	require.Len(t, stub.puts, 1)
	assert.Equal(t, []string{aws.StringValue(stub.puts[0].Key)}, stub.deletes)
}
