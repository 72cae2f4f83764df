package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/config"
	"github.com/priyanshu3301/civic-report-backend/internal/domain"
	"github.com/priyanshu3301/civic-report-backend/pkg/e"
)

// S3Store stores report media on S3 (or an S3-compatible endpoint). Images
// get a synchronously derived thumbnail; video is re-encoded to mp4 with a
// still-frame thumbnail; audio is re-encoded to mp3.
type S3Store struct {
	client        *s3.Client
	bucket        string
	region        string
	endpoint      string
	thumbSize     int
	uploadTimeout time.Duration
	transcoder    Transcoder
	logger        *slog.Logger
}

func NewS3Store(ctx context.Context, cfg config.S3Config, mediaCfg config.MediaConfig, transcoder Transcoder, logger *slog.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, e.Wrap("media.NewS3Store.LoadDefaultConfig", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		thumbSize:     mediaCfg.ThumbnailSize,
		uploadTimeout: mediaCfg.UploadTimeout,
		transcoder:    transcoder,
		logger:        logger,
	}, nil
}

// Upload stores one file, derived assets included. The configured upload
// timeout bounds the whole operation, transcoding and all.
func (s *S3Store) Upload(ctx context.Context, up Upload) (Asset, error) {
	const op = "media.S3Store.Upload"

	mediaType, ok := TypeFromContentType(up.ContentType)
	if !ok {
		return Asset{}, fmt.Errorf("%s: unsupported content type %q: %w", op, up.ContentType, e.ErrInvalidInput)
	}

	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	base := fmt.Sprintf("%s/%s", up.Folder, uuid.New().String())

	switch mediaType {
	case domain.MediaImage:
		return s.uploadImage(ctx, base, up)
	case domain.MediaVideo:
		return s.uploadVideo(ctx, base, up)
	default:
		return s.uploadAudio(ctx, base, up)
	}
}

func (s *S3Store) uploadImage(ctx context.Context, base string, up Upload) (Asset, error) {
	const op = "media.S3Store.uploadImage"

	thumb, err := Thumbnail(up.Data, s.thumbSize)
	if err != nil {
		return Asset{}, e.Wrap(op, err)
	}

	key := base + imageExt(up.ContentType)
	if err := s.put(ctx, key, up.ContentType, up.Data); err != nil {
		return Asset{}, e.Wrap(op, err)
	}
	if err := s.put(ctx, thumbKey(key), "image/jpeg", thumb); err != nil {
		// keep readers from ever seeing a half-stored asset
		s.deleteObject(ctx, key)
		return Asset{}, e.Wrap(op, err)
	}

	thumbURL := s.url(thumbKey(key))
	return Asset{
		Type:         domain.MediaImage,
		URL:          s.url(key),
		ThumbnailURL: &thumbURL,
		ProviderID:   key,
	}, nil
}

func (s *S3Store) uploadVideo(ctx context.Context, base string, up Upload) (Asset, error) {
	const op = "media.S3Store.uploadVideo"

	video, frame, err := s.transcoder.TranscodeVideo(ctx, up.Data)
	if err != nil {
		return Asset{}, e.Wrap(op, err)
	}

	key := base + ".mp4"
	if err := s.put(ctx, key, "video/mp4", video); err != nil {
		return Asset{}, e.Wrap(op, err)
	}
	if err := s.put(ctx, thumbKey(key), "image/jpeg", frame); err != nil {
		s.deleteObject(ctx, key)
		return Asset{}, e.Wrap(op, err)
	}

	thumbURL := s.url(thumbKey(key))
	return Asset{
		Type:         domain.MediaVideo,
		URL:          s.url(key),
		ThumbnailURL: &thumbURL,
		ProviderID:   key,
	}, nil
}

func (s *S3Store) uploadAudio(ctx context.Context, base string, up Upload) (Asset, error) {
	const op = "media.S3Store.uploadAudio"

	audio, err := s.transcoder.TranscodeAudio(ctx, up.Data)
	if err != nil {
		return Asset{}, e.Wrap(op, err)
	}

	key := base + ".mp3"
	if err := s.put(ctx, key, "audio/mpeg", audio); err != nil {
		return Asset{}, e.Wrap(op, err)
	}

	return Asset{
		Type:       domain.MediaAudio,
		URL:        s.url(key),
		ProviderID: key,
	}, nil
}

// Delete removes the primary object and, for images and video, the derived
// thumbnail. Failures are logged and reported as false, never escalated.
func (s *S3Store) Delete(ctx context.Context, providerID string, mediaType domain.MediaType) bool {
	ok := s.deleteObject(ctx, providerID)
	if mediaType == domain.MediaImage || mediaType == domain.MediaVideo {
		if !s.deleteObject(ctx, thumbKey(providerID)) {
			ok = false
		}
	}
	return ok
}

func (s *S3Store) put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *S3Store) deleteObject(ctx context.Context, key string) bool {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Warn("s3 delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func (s *S3Store) url(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func thumbKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + "-thumb.jpg"
}

func imageExt(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
