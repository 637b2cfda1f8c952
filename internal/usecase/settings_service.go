package usecase

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/playforge/arcade-api/internal/domain/settings"
	"github.com/playforge/arcade-api/internal/platform/id"
)

// SetPromoBannerInput carries the banner update. ImageData is the decoded
// multipart upload body; when empty the stored image is kept.
type SetPromoBannerInput struct {
	LinkURL   string
	ImageData []byte
	ImageExt  string
}

type SettingsService struct {
	repo      settings.Repository
	ids       id.Generator
	uploadDir string
}

func NewSettingsService(repo settings.Repository, ids id.Generator, uploadDir string) *SettingsService {
	return &SettingsService{
		repo:      repo,
		ids:       ids,
		uploadDir: uploadDir,
	}
}

func (s *SettingsService) GetHowToPlayLink(ctx context.Context) (settings.HowToPlayLink, error) {
	link, err := s.repo.GetHowToPlayLink(ctx)
	if err != nil {
		return settings.HowToPlayLink{}, fmt.Errorf("get how-to-play link: %w", err)
	}
	return link, nil
}

func (s *SettingsService) SetHowToPlayLink(ctx context.Context, rawURL string) (settings.HowToPlayLink, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateHTTPURL(rawURL); err != nil {
		return settings.HowToPlayLink{}, err
	}

	link := settings.HowToPlayLink{URL: rawURL}
	if err := s.repo.SetHowToPlayLink(ctx, link); err != nil {
		return settings.HowToPlayLink{}, fmt.Errorf("set how-to-play link: %w", err)
	}
	return link, nil
}

func (s *SettingsService) GetPromoBanner(ctx context.Context) (settings.PromoBanner, error) {
	banner, err := s.repo.GetPromoBanner(ctx)
	if err != nil {
		return settings.PromoBanner{}, fmt.Errorf("get promo banner: %w", err)
	}
	return banner, nil
}

// SetPromoBanner stores the banner, writing an uploaded image under the
// upload directory with a randomized filename first.
func (s *SettingsService) SetPromoBanner(ctx context.Context, input SetPromoBannerInput) (settings.PromoBanner, error) {
	ctx, span := startUsecaseSpan(ctx, "SettingsService.SetPromoBanner")
	defer span.End()

	input.LinkURL = strings.TrimSpace(input.LinkURL)
	if input.LinkURL != "" {
		if err := validateHTTPURL(input.LinkURL); err != nil {
			return settings.PromoBanner{}, err
		}
	}

	current, err := s.repo.GetPromoBanner(ctx)
	if err != nil {
		return settings.PromoBanner{}, fmt.Errorf("get promo banner: %w", err)
	}

	banner := settings.PromoBanner{
		ImageSrc: current.ImageSrc,
		LinkURL:  input.LinkURL,
	}
	if len(input.ImageData) > 0 {
		fileName, err := s.saveImage(input.ImageData, input.ImageExt)
		if err != nil {
			return settings.PromoBanner{}, err
		}
		banner.ImageSrc = fileName
	}

	if err := s.repo.SetPromoBanner(ctx, banner); err != nil {
		return settings.PromoBanner{}, fmt.Errorf("set promo banner: %w", err)
	}
	return banner, nil
}

func (s *SettingsService) saveImage(data []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return "", fmt.Errorf("%w: unsupported image extension %q", ErrInvalidInput, ext)
	}

	fileName, err := s.ids.NewFileName(ext)
	if err != nil {
		return "", fmt.Errorf("generate banner filename: %w", err)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, fileName), data, 0o644); err != nil {
		return "", fmt.Errorf("write banner image: %w", err)
	}
	return fileName, nil
}

func validateHTTPURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: malformed url", ErrInvalidInput)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: url must use http or https", ErrInvalidInput)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url must include a host", ErrInvalidInput)
	}
	return nil
}
