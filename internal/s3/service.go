package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/flexprice/recurly-client/internal/config"
	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/flexprice/recurly-client/internal/logger"
	"github.com/h2non/filetype"
)

const (
	defaultPresignExpiryDuration = 30 * time.Minute
	metadataFetchedAt            = "fetched-at"
)

// Service archives invoice PDFs in a bucket
type Service interface {
	UploadDocument(ctx context.Context, document *Document) error
	GetPresignedUrl(ctx context.Context, invoiceNumber string) (string, error)
	GetDocument(ctx context.Context, invoiceNumber string) ([]byte, error)
	Exists(ctx context.Context, invoiceNumber string) (bool, error)
}

// objectAPI is the subset of *s3.Client the archive uses
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type s3ServiceImpl struct {
	client    objectAPI
	presigner presignAPI
	config    *config.S3Config
	logger    *logger.Logger
}

// NewService returns nil when the archive is disabled
func NewService(cfg *config.Configuration, log *logger.Logger) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(cfg.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	client := s3.NewFromConfig(awsCfg)
	return newService(&cfg.S3, client, s3.NewPresignClient(client), log), nil
}

func newService(cfg *config.S3Config, client objectAPI, presigner presignAPI, log *logger.Logger) *s3ServiceImpl {
	return &s3ServiceImpl{
		client:    client,
		presigner: presigner,
		config:    cfg,
		logger:    log,
	}
}

func (s *s3ServiceImpl) getObjectKey(invoiceNumber string) (string, error) {
	if invoiceNumber == "" {
		return "", ierr.NewError("invoice number is required").
			WithHint("Archived documents are keyed by invoice number").
			Mark(ierr.ErrValidation)
	}
	if s.config.InvoiceBucketConfig.KeyPrefix != "" {
		return fmt.Sprintf("%s/%s.pdf", s.config.InvoiceBucketConfig.KeyPrefix, invoiceNumber), nil
	}
	return fmt.Sprintf("%s.pdf", invoiceNumber), nil
}

func (s *s3ServiceImpl) getBucket() string {
	return s.config.InvoiceBucketConfig.Bucket
}

// getContentType sniffs the document bytes and rejects anything that is
// not the declared kind
func (s *s3ServiceImpl) getContentType(document *Document) (string, error) {
	switch document.Kind {
	case DocumentKindPdf:
		if !filetype.Is(document.Data, "pdf") {
			kind, _ := filetype.Match(document.Data)
			return "", ierr.NewErrorf("document for invoice %s is not a pdf", document.InvoiceNumber).
				WithHintf("detected content type %q", kind.MIME.Value).
				Mark(ierr.ErrValidation)
		}
		return "application/pdf", nil
	default:
		return "application/octet-stream", nil
	}
}

// Exists implements Service.
func (s *s3ServiceImpl) Exists(ctx context.Context, invoiceNumber string) (bool, error) {
	key, err := s.getObjectKey(invoiceNumber)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.getBucket()),
		Key:    aws.String(key),
	})

	if err != nil {
		var nsk *types.NoSuchKey
		var nske *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nske) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("failed to check if document exists").
			WithMessagef("bucket:%s, key:%s", s.getBucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	return true, nil
}

// GetPresignedUrl implements Service.
func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, invoiceNumber string) (string, error) {
	key, err := s.getObjectKey(invoiceNumber)
	if err != nil {
		return "", err
	}

	duration, err := time.ParseDuration(s.config.InvoiceBucketConfig.PresignExpiryDuration)
	if err != nil {
		duration = defaultPresignExpiryDuration
	}

	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.getBucket()),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", s.getBucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	return result.URL, nil
}

// UploadDocument implements Service.
func (s *s3ServiceImpl) UploadDocument(ctx context.Context, document *Document) error {
	key, err := s.getObjectKey(document.InvoiceNumber)
	if err != nil {
		return err
	}

	contentType, err := s.getContentType(document)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.getBucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document.Data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			metadataFetchedAt: document.FetchedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return ierr.WithError(err).WithHint("failed to upload document").
			WithMessagef("bucket:%s, key:%s", s.getBucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Debugw("archived invoice document",
		"invoice_number", document.InvoiceNumber,
		"bucket", s.getBucket(),
		"key", key,
		"size", len(document.Data))

	return nil
}

// GetDocument implements Service.
func (s *s3ServiceImpl) GetDocument(ctx context.Context, invoiceNumber string) ([]byte, error) {
	key, err := s.getObjectKey(invoiceNumber)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.getBucket()),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ierr.WithError(err).
				WithHintf("invoice %s has not been archived", invoiceNumber).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).WithHint("failed to get document").
			WithMessagef("bucket:%s, key:%s", s.getBucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	defer result.Body.Close()

	return io.ReadAll(result.Body)
}
