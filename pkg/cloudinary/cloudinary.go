package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Object is one stored asset of a bucket.
type Object struct {
	Name      string
	ID        string
	CreatedAt time.Time
	Size      int64
	MimeType  string
	URL       string
}

// Service is the object store backed by Cloudinary. Buckets map to sub folders of the
// configured root folder and object paths map to public ids.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &Service{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores body under bucket/objectPath.
func (s *Service) Upload(ctx context.Context, bucket, objectPath string, body io.Reader) error {
	params := uploader.UploadParams{
		PublicID:     s.publicID(bucket, objectPath),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, body, params)
	if err != nil {
		return fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("bucket", bucket).Msg("file uploaded to cloudinary")
	return nil
}

// PublicURL derives the delivery URL of an object without a network round trip.
func (s *Service) PublicURL(bucket, objectPath string) string {
	publicID := s.publicID(bucket, objectPath)
	asset, err := s.client.Image(publicID)
	if isVideoPath(objectPath) {
		asset, err = s.client.Video(publicID)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to build asset url")
		return ""
	}
	url, err := asset.String()
	if err != nil {
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to build asset url")
		return ""
	}
	return url
}

// List returns the image and video assets stored in bucket.
func (s *Service) List(ctx context.Context, bucket string) ([]Object, error) {
	prefix := s.bucketFolder(bucket) + "/"
	objects := make([]Object, 0)
	for _, assetType := range []api.AssetType{api.Image, api.Video} {
		result, err := s.client.Admin.Assets(ctx, admin.AssetsParams{
			AssetType:    assetType,
			DeliveryType: string(api.Upload),
			Prefix:       prefix,
			MaxResults:   500,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list assets: %w", err)
		}
		if result.Error.Message != "" {
			return nil, fmt.Errorf("failed to list assets: %s", result.Error.Message)
		}

		for _, asset := range result.Assets {
			name := strings.TrimPrefix(asset.PublicID, prefix)
			if asset.Format != "" {
				name += "." + asset.Format
			}
			objects = append(objects, Object{
				Name:      name,
				ID:        asset.AssetID,
				CreatedAt: asset.CreatedAt,
				Size:      int64(asset.Bytes),
				MimeType:  string(assetType) + "/" + asset.Format,
				URL:       asset.SecureURL,
			})
		}
	}
	return objects, nil
}

// Remove deletes objects from bucket. Missing objects are ignored.
func (s *Service) Remove(ctx context.Context, bucket string, paths []string) error {
	var errs []error
	for _, objectPath := range paths {
		publicID := s.publicID(bucket, objectPath)
		resourceType := "image"
		if isVideoPath(objectPath) {
			resourceType = "video"
		}

		result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:     publicID,
			ResourceType: resourceType,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("destroy %s: %w", publicID, err))
			continue
		}
		if result.Error.Message != "" {
			errs = append(errs, fmt.Errorf("destroy %s: %s", publicID, result.Error.Message))
			continue
		}
		s.logger.Info().Str("public_id", publicID).Str("result", result.Result).Msg("asset removed from cloudinary")
	}
	return errors.Join(errs...)
}

func (s *Service) bucketFolder(bucket string) string {
	bucket = strings.Trim(bucket, "/")
	if s.folder == "" {
		return bucket
	}
	return s.folder + "/" + bucket
}

func (s *Service) publicID(bucket, objectPath string) string {
	clean := strings.Trim(path.Clean("/"+objectPath), "/")
	clean = strings.TrimSuffix(clean, path.Ext(clean))
	return s.bucketFolder(bucket) + "/" + clean
}

func isVideoPath(objectPath string) bool {
	switch strings.ToLower(path.Ext(objectPath)) {
	case ".mp4", ".webm", ".mov":
		return true
	default:
		return false
	}
}
