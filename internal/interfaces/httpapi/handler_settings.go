package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/playforge/arcade-api/internal/usecase"
)

// maxBannerUploadBytes bounds the in-memory multipart parse for banner
// uploads.
const maxBannerUploadBytes = 5 << 20

type howToPlayLinkRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type howToPlayLinkDTO struct {
	URL string `json:"url"`
}

type promoBannerDTO struct {
	ImageSrc string `json:"imageSrc"`
	LinkURL  string `json:"linkUrl"`
}

func (h *Handler) GetHowToPlayLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHowToPlayLink")
	defer span.End()

	link, err := h.settingsService.GetHowToPlayLink(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get how-to-play link failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, howToPlayLinkDTO{URL: link.URL})
}

func (h *Handler) SetHowToPlayLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetHowToPlayLink")
	defer span.End()

	var req howToPlayLinkRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	link, err := h.settingsService.SetHowToPlayLink(ctx, req.URL)
	if err != nil {
		h.logger.WarnContext(ctx, "set how-to-play link failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, howToPlayLinkDTO{URL: link.URL})
}

func (h *Handler) GetPromoBanner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPromoBanner")
	defer span.End()

	banner, err := h.settingsService.GetPromoBanner(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get promo banner failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, promoBannerDTO{ImageSrc: banner.ImageSrc, LinkURL: banner.LinkURL})
}

func (h *Handler) SetPromoBanner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPromoBanner")
	defer span.End()

	if err := r.ParseMultipartForm(maxBannerUploadBytes); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid multipart form: %v", usecase.ErrInvalidInput, err))
		return
	}

	input := usecase.SetPromoBannerInput{
		LinkURL: strings.TrimSpace(r.FormValue("linkUrl")),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// No upload keeps the stored image.
	case err != nil:
		writeError(ctx, w, fmt.Errorf("%w: invalid image upload: %v", usecase.ErrInvalidInput, err))
		return
	default:
		defer file.Close()

		data, readErr := io.ReadAll(io.LimitReader(file, maxBannerUploadBytes))
		if readErr != nil {
			writeError(ctx, w, fmt.Errorf("%w: reading image upload: %v", usecase.ErrInvalidInput, readErr))
			return
		}
		input.ImageData = data
		input.ImageExt = filepath.Ext(header.Filename)
	}

	banner, err := h.settingsService.SetPromoBanner(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "set promo banner failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, promoBannerDTO{ImageSrc: banner.ImageSrc, LinkURL: banner.LinkURL})
}
