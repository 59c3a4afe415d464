package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/expotoworld/programs-service/internal/models"
	"github.com/expotoworld/programs-service/internal/policy"
	"github.com/google/uuid"
)

// Banner constraints.
const (
	MaxBannerBytes  = 5 << 20
	MinBannerWidth  = 1440
	MinBannerHeight = 480
)

var bannerExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// BannerKey returns the object key a program banner is stored under.
func BannerKey(programID int64, ext string) string {
	return fmt.Sprintf("programs/%d/banner-%s%s", programID, uuid.NewString(), ext)
}

// UploadBanner validates an image and stores it as the program's banner.
// The content type is sniffed from the bytes; the client's claim is ignored.
func (s *Service) UploadBanner(ctx context.Context, caller Caller, programID int64, body io.Reader) (*models.Program, error) {
	if err := caller.authorize(policy.OpUploadBanner); err != nil {
		return nil, err
	}
	p, err := s.visibleProgram(ctx, caller, programID)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, fmt.Errorf("upload banner: image storage not configured")
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxBannerBytes+1))
	if err != nil {
		return nil, fmt.Errorf("upload banner: read body: %w", err)
	}
	contentType, ext, err := checkBanner(data)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Put(ctx, BannerKey(p.ID, ext), contentType, data)
	if err != nil {
		return nil, fmt.Errorf("upload banner: %w", err)
	}
	p.BannerImageURL = &url
	if err := s.store.UpdateProgram(ctx, p); err != nil {
		return nil, wrap("upload banner", translate(err))
	}
	return p.Normalize(), nil
}

// checkBanner returns the sniffed content type and file extension, or a
// validation error on the banner_image field.
func checkBanner(data []byte) (string, string, error) {
	const field = "banner_image"
	switch {
	case len(data) == 0:
		return "", "", fieldError(field, "The submitted file is empty.")
	case len(data) > MaxBannerBytes:
		return "", "", fieldError(field, fmt.Sprintf("The file exceeds the maximum size of %d bytes.", MaxBannerBytes))
	}

	contentType := http.DetectContentType(data)
	ext, ok := bannerExtensions[contentType]
	if !ok {
		return "", "", fieldError(field, "Upload a valid image. Only JPEG and PNG files are accepted.")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", fieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if cfg.Width < MinBannerWidth || cfg.Height < MinBannerHeight {
		return "", "", fieldError(field, fmt.Sprintf(
			"The image must be at least %dx%d pixels; got %dx%d.",
			MinBannerWidth, MinBannerHeight, cfg.Width, cfg.Height))
	}
	return contentType, ext, nil
}
