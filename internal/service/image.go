package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/validation"
)

const (
	recipeImagePrefix  = "recipe_images/"
	profileImagePrefix = "profile_pics/"

	uploadURLTTL   = 15 * time.Minute
	downloadURLTTL = time.Hour
)

// Presigner issues time-limited object URLs. config.S3Config implements it.
type Presigner interface {
	PresignGet(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
	PresignPut(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// ImageService hands out presigned S3 URLs for recipe images and profile
// pictures. Clients upload directly to the bucket and store the returned key
// in the recipe or account.
type ImageService struct {
	presigner Presigner
	validator *validation.Validator
	log       *slog.Logger
}

func NewImageService(presigner Presigner, v *validation.Validator, log *slog.Logger) *ImageService {
	return &ImageService{
		presigner: presigner,
		validator: v,
		log:       log.With("component", "image_service"),
	}
}

func (s *ImageService) CreateUpload(ctx context.Context, actor types.Actor, req types.ImageUploadRequest) (*types.ImageUploadResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	prefix := recipeImagePrefix
	if req.Kind == "profile" {
		prefix = profileImagePrefix
	}
	key := fmt.Sprintf("%s%d/%s.%s", prefix, actor.UserID, uuid.NewString(), strings.ToLower(req.Extension))

	url, err := s.presigner.PresignPut(ctx, key, uploadURLTTL)
	if err != nil {
		return nil, errors.Internal("failed to presign upload", err)
	}

	s.log.Debug("upload presigned", "key", key, "user_id", actor.UserID)
	return &types.ImageUploadResponse{
		Key:       key,
		UploadURL: url,
		ExpiresAt: time.Now().Add(uploadURLTTL),
	}, nil
}

// DownloadURL presigns a GET for a key issued by CreateUpload.
func (s *ImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key != path.Clean(key) || (!strings.HasPrefix(key, recipeImagePrefix) && !strings.HasPrefix(key, profileImagePrefix)) {
		return "", errors.NotFound("image not found")
	}
	url, err := s.presigner.PresignGet(ctx, key, downloadURLTTL)
	if err != nil {
		return "", errors.Internal("failed to presign download", err)
	}
	return url, nil
}
