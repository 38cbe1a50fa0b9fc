package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
)

// S3Store keeps rendered reports in S3, organized by user and date so a
// user's report history is browsable with a prefix listing
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *zap.Logger
	now       func() time.Time
}

// NewS3Store creates a new S3-backed report store
func NewS3Store(client *s3.Client, bucket string, logger *zap.Logger) ports.ReportStore {
	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		logger:    logger,
		now:       time.Now,
	}
}

// Put stores a rendered HTML report and returns its object key
func (s *S3Store) Put(ctx context.Context, userID, reportType string, html []byte) (string, error) {
	now := s.now().UTC()
	key := fmt.Sprintf("reports/%s/%s/%s_report_%s.html",
		userID, now.Format("2006/01/02"), reportType, now.Format("150405"))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(html),
		ContentType: aws.String("text/html"),
		Metadata: map[string]string{
			"user_id":      userID,
			"report_type":  reportType,
			"generated_at": now.Format(time.RFC3339),
		},
	})
	if err != nil {
		s.logger.Error("Failed to store report",
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to store report: %w", err)
	}

	s.logger.Debug("Stored report",
		zap.String("key", key),
		zap.Int("bytes", len(html)),
	)

	return key, nil
}

// PresignGet returns a temporary download URL for a stored report
func (s *S3Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign report URL: %w", err)
	}
	return req.URL, nil
}
