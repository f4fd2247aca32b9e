package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
	cloud "github.com/noah-isme/wakaf-cms-api/pkg/cloudinary"
)

var (
	// ErrMediaTooLarge indicates the payload exceeded the configured limit.
	ErrMediaTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrMediaTypeNotAllowed indicates the sniffed MIME type is not accepted.
	ErrMediaTypeNotAllowed = errors.New("file type not allowed")
	// ErrMediaFileRequired indicates the multipart file field was missing.
	ErrMediaFileRequired = errors.New("file is required")
	// ErrMediaBucketInvalid indicates an unknown or malformed bucket name.
	ErrMediaBucketInvalid = errors.New("invalid media bucket")
)

// MediaTable is the audit table name for object store changes.
const MediaTable = "media"

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

var allowedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"image/avif":      {},
	"video/mp4":       {},
	"video/webm":      {},
	"application/pdf": {},
}

// ObjectStore is the blob storage contract used by the media library.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath string, body io.Reader) error
	PublicURL(bucket, objectPath string) string
	List(ctx context.Context, bucket string) ([]cloud.Object, error)
	Remove(ctx context.Context, bucket string, paths []string) error
}

// MediaService manages uploads in the object store.
type MediaService interface {
	Upload(ctx context.Context, bucket string, file *multipart.FileHeader) (dto.MediaUploadResponse, error)
	List(ctx context.Context, bucket string) ([]dto.MediaObjectResponse, error)
	Remove(ctx context.Context, bucket string, paths []string) error
}

type mediaService struct {
	store    ObjectStore
	activity ActivityService
	logger   zerolog.Logger
	maxSize  int64
	tracer   trace.Tracer
	now      func() time.Time
}

// NewMediaService constructs the media library service.
func NewMediaService(store ObjectStore, activity ActivityService, maxSizeMB int, logger zerolog.Logger) MediaService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &mediaService{
		store:    store,
		activity: activity,
		logger:   logger.With().Str("component", "media_service").Logger(),
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/noah-isme/wakaf-cms-api/internal/service/media"),
		now:      time.Now,
	}
}

func (s *mediaService) Upload(ctx context.Context, bucket string, file *multipart.FileHeader) (dto.MediaUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "media.upload")
	defer span.End()
	span.SetAttributes(attribute.Int64("media.max_bytes", s.maxSize), attribute.String("media.bucket", bucket))

	bucket, err := normalizeBucket(bucket)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid bucket")
		return dto.MediaUploadResponse{}, err
	}
	if file == nil {
		span.RecordError(ErrMediaFileRequired)
		span.SetStatus(codes.Error, "validation failed")
		return dto.MediaUploadResponse{}, ErrMediaFileRequired
	}
	if file.Size > s.maxSize {
		observability.MediaRejections().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.MediaUploadResponse{}, ErrMediaTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.MediaUploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.MediaUploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.MediaRejections().WithLabelValues("size").Inc()
		span.RecordError(ErrMediaTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.MediaUploadResponse{}, ErrMediaTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	mime := strings.ToLower(strings.SplitN(detected.String(), ";", 2)[0])
	span.SetAttributes(attribute.String("media.detected_mime", mime))
	if _, ok := allowedMediaTypes[mime]; !ok {
		observability.MediaRejections().WithLabelValues("type").Inc()
		span.RecordError(ErrMediaTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.MediaUploadResponse{}, ErrMediaTypeNotAllowed
	}

	objectPath := s.objectPath(file.Filename, detected.Extension())
	if err := s.store.Upload(ctx, bucket, objectPath, bytes.NewReader(buf.Bytes())); err != nil {
		observability.MediaRejections().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.MediaUploadResponse{}, err
	}

	response := dto.MediaUploadResponse{
		Bucket:    bucket,
		Path:      objectPath,
		URL:       s.store.PublicURL(bucket, objectPath),
		MimeType:  mime,
		SizeBytes: int64(buf.Len()),
	}
	observability.MediaUploads().WithLabelValues(mediaKind(mime)).Inc()
	span.SetStatus(codes.Ok, "stored")

	if snapshot, err := models.DocumentOf(response); err == nil {
		s.activity.Record(ctx, ActivityEntry{
			Action:         models.ActivityCreate,
			TargetTable:    MediaTable,
			TargetRecordID: bucket + "/" + objectPath,
			NewPayload:     snapshot,
			Description:    fmt.Sprintf("Upload media: %s", objectPath),
		})
	}

	return response, nil
}

func (s *mediaService) List(ctx context.Context, bucket string) ([]dto.MediaObjectResponse, error) {
	ctx, span := s.tracer.Start(ctx, "media.list")
	defer span.End()

	bucket, err := normalizeBucket(bucket)
	if err != nil {
		return nil, err
	}

	objects, err := s.store.List(ctx, bucket)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, err
	}

	responses := make([]dto.MediaObjectResponse, 0, len(objects))
	for _, object := range objects {
		responses = append(responses, dto.MediaObjectResponse{
			Name:      object.Name,
			ID:        object.ID,
			CreatedAt: object.CreatedAt,
			URL:       object.URL,
			Metadata: dto.MediaObjectMetadata{
				Size:     object.Size,
				MimeType: object.MimeType,
			},
		})
	}
	return responses, nil
}

func (s *mediaService) Remove(ctx context.Context, bucket string, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "media.remove")
	defer span.End()

	bucket, err := normalizeBucket(bucket)
	if err != nil {
		return err
	}

	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if trimmed := strings.Trim(strings.TrimSpace(p), "/"); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("%w: at least one path is required", ErrContentInvalid)
	}

	if err := s.store.Remove(ctx, bucket, cleaned); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remove failed")
		return err
	}

	for _, p := range cleaned {
		snapshot, err := models.DocumentOf(map[string]string{"bucket": bucket, "path": p})
		if err != nil {
			continue
		}
		s.activity.Record(ctx, ActivityEntry{
			Action:         models.ActivityDelete,
			TargetTable:    MediaTable,
			TargetRecordID: bucket + "/" + p,
			OldPayload:     snapshot,
			Description:    fmt.Sprintf("Hapus media: %s", p),
		})
	}
	return nil
}

func (s *mediaService) objectPath(original, detectedExt string) string {
	name := sanitizeFileName(original)
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, ext)
	if detectedExt != "" {
		ext = detectedExt
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixNano(), base, ext)
}

func normalizeBucket(bucket string) (string, error) {
	bucket = strings.ToLower(strings.TrimSpace(bucket))
	if !bucketPattern.MatchString(bucket) {
		return "", ErrMediaBucketInvalid
	}
	return bucket, nil
}

func mediaKind(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	default:
		return "document"
	}
}

func sanitizeFileName(name string) string {
	ext := filepath.Ext(name)
	base := slugify(strings.TrimSuffix(filepath.Base(name), ext))
	if base == "" {
		base = "upload"
	}
	ext = slugify(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "bin"
	}
	return base + "." + ext
}
