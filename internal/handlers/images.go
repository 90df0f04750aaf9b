package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecommerce-platform/internal/models"
	"ecommerce-platform/internal/services"
)

const (
	maxUploadBytes       = 10 << 20
	defaultSignedURLTTL  = 15 * time.Minute
	maxSignedURLLifetime = 7 * 24 * time.Hour
)

// ImageHandler serves the s3.* procedures of the dashboard.
type ImageHandler struct {
	rpc    *RPC
	images *services.ImageService
}

func NewImageHandler(rpc *RPC, images *services.ImageService) *ImageHandler {
	return &ImageHandler{rpc: rpc, images: images}
}

// Upload returns the procedure storing a multipart "file" for the entity
// named by the "id" form field.
func (h *ImageHandler) Upload(kind services.ImageKind) Procedure {
	return func(w http.ResponseWriter, r *http.Request) (interface{}, error) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("%w: expected a multipart image upload", models.ErrInvalidInput)
		}

		id := strings.TrimSpace(r.FormValue("id"))
		if id == "" {
			return nil, fmt.Errorf("%w: id is required", models.ErrInvalidInput)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("%w: file is required", models.ErrInvalidInput)
		}
		defer file.Close()

		return h.images.UploadEntityImage(r.Context(), kind, id, header.Filename, file)
	}
}

type signedURLRequest struct {
	Key       string `json:"key" validate:"required"`
	ExpiresIn int    `json:"expires_in" validate:"omitempty,min=1"`
}

type signedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *ImageHandler) GetSignedURL(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req signedURLRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}

	ttl := defaultSignedURLTTL
	if req.ExpiresIn > 0 {
		ttl = time.Duration(req.ExpiresIn) * time.Second
	}
	if ttl > maxSignedURLLifetime {
		ttl = maxSignedURLLifetime
	}

	url, err := h.images.SignedURL(r.Context(), req.Key, ttl)
	if err != nil {
		return nil, err
	}
	return signedURLResponse{URL: url, ExpiresAt: time.Now().Add(ttl)}, nil
}

type listImagesRequest struct {
	Kind services.ImageKind `json:"kind" validate:"required,oneof=products categories admins users"`
	ID   string             `json:"id"`
}

func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req listImagesRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return h.images.ListImages(r.Context(), req.Kind, req.ID)
}

type deleteImageRequest struct {
	Key string `json:"key" validate:"required"`
}

func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req deleteImageRequest
	if err := h.rpc.Decode(w, r, &req); err != nil {
		return nil, err
	}
	return nil, h.images.DeleteImage(r.Context(), req.Key)
}
