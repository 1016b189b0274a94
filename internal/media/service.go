package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

const keyPrefix = "projects/"

var (
	ErrNoFile     = apperror.Validation("file is required")
	ErrNotAnImage = apperror.Validation("Only image uploads are allowed")
	ErrFileTooBig = apperror.Validation("File is too large")
	ErrUploadsOff = apperror.Unavailable("Uploads are not configured", nil)
)

type Uploaded struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type Service struct {
	uploader      Uploader
	bucket        string
	publicBaseURL string
	maxBytes      int64
	newID         func() string
}

func NewService(uploader Uploader, bucket, publicBaseURL string, maxBytes int64) *Service {
	return &Service{
		uploader:      uploader,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
		newID:         uuid.NewString,
	}
}

func (s *Service) MaxBytes() int64 { return s.maxBytes }

// UploadImage checks the file content really is an image and stores it under
// projects/<uuid><ext>.
func (s *Service) UploadImage(ctx context.Context, fh *multipart.FileHeader) (*Uploaded, error) {
	if fh.Size > s.maxBytes {
		return nil, ErrFileTooBig
	}

	file, err := fh.Open()
	if err != nil {
		return nil, apperror.Internal("open upload", err)
	}
	defer file.Close()

	contentType, err := sniff(file)
	if err != nil {
		return nil, apperror.Internal("read upload", err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	key := keyPrefix + s.newID() + strings.ToLower(filepath.Ext(fh.Filename))
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
		// metadata travels as an x-amz-meta header, which must stay ASCII
		Metadata: map[string]string{
			"name": url.QueryEscape(fh.Filename),
		},
	})
	if err != nil {
		return nil, apperror.Internal("upload image", err)
	}

	url := out.Location
	if s.publicBaseURL != "" {
		url = s.publicBaseURL + "/" + key
	}
	return &Uploaded{Key: key, URL: url, ContentType: contentType, Size: fh.Size}, nil
}

// sniff detects the content type from the first 512 bytes and rewinds f.
func sniff(f multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}
