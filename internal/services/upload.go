package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"surfapp/internal/apiclient"
	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadURLExpiry = 5 * time.Minute

// S3Config locates the media bucket.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	// PublicURL is the base of stored media URLs. Empty means the
	// virtual-hosted bucket URL.
	PublicURL string
}

// Presigner is the part of s3.PresignClient the upload service needs.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadService hands out presigned URLs for session media
type UploadService struct {
	backend   backend.Backend
	presigner Presigner
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Presigner builds a presign client from cfg. Static credentials are
// used when given, the default AWS chain otherwise.
func NewS3Presigner(ctx context.Context, cfg S3Config) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return s3.NewPresignClient(client), nil
}

// NewUploadService creates an upload service writing media records to b.
func NewUploadService(b backend.Backend, presigner Presigner, cfg S3Config) *UploadService {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &UploadService{
		backend:   b,
		presigner: presigner,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Presign creates the media record and a URL to PUT its content to. Only the
// photographer of the session may upload.
func (s *UploadService) Presign(ctx context.Context, user models.User, sessionID, filename, contentType string) (*models.PresignedUpload, error) {
	if s == nil {
		return nil, apiclient.Newf(apiclient.CodeNotImplemented, "media uploads are not configured")
	}

	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, apiclient.Newf(apiclient.CodeValidation, "filename is required")
	}
	if contentType == "" {
		return nil, apiclient.Newf(apiclient.CodeValidation, "content_type is required")
	}

	session, err := s.backend.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.SurferID != user.ID && session.PhotographerID != user.ID {
		return nil, fmt.Errorf("session %s: %w", sessionID, backend.ErrNotFound)
	}
	if session.PhotographerID != user.ID {
		return nil, apiclient.Newf(apiclient.CodeForbidden, "only the session photographer can upload media")
	}

	mediaID := uuid.New().String()
	key := fmt.Sprintf("sessions/%s/%s%s", sessionID, mediaID, path.Ext(filename))

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	now := s.now()
	media := &models.Media{
		ID:         mediaID,
		SessionID:  sessionID,
		Type:       mediaType(contentType),
		URL:        s.publicURL + "/" + key,
		Filename:   filename,
		UploadedAt: now,
	}
	if err := s.backend.InsertMedia(ctx, media); err != nil {
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	log.Info().
		Str("session_id", sessionID).
		Str("media_id", mediaID).
		Str("key", key).
		Msg("Issued upload URL")

	return &models.PresignedUpload{
		UploadURL: request.URL,
		MediaID:   mediaID,
		ExpiresAt: now.Add(uploadURLExpiry),
	}, nil
}

func mediaType(contentType string) models.MediaType {
	if strings.HasPrefix(contentType, "video/") {
		return models.MediaVideo
	}
	return models.MediaPhoto
}
