// Package receipt attaches proof-of-transfer artifacts to transfer
// requests. Attachment is an append-only side effect: it stores the blob
// externally and records only the URL, and a failure here never rolls
// back or blocks a state-machine transition that already happened.
package receipt

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fuelport/backend/internal/apperr"
	"github.com/fuelport/backend/internal/models"
)

// MaxReceiptBytes is the upload ceiling.
const MaxReceiptBytes = 5 << 20 // 5 MB

// Uploader stores a blob and returns a retrievable URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// RequestStore is the slice of the transfer repository this service needs.
type RequestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	SetReceiptURL(ctx context.Context, id uuid.UUID, url string) error
}

type Service struct {
	uploader     Uploader
	requests     RequestStore
	storeTimeout time.Duration
}

func NewService(uploader Uploader, requests RequestStore, storeTimeout time.Duration) *Service {
	return &Service{uploader: uploader, requests: requests, storeTimeout: storeTimeout}
}

// Attach validates, uploads, and records a receipt for the request.
// Valid in any request state; a receipt can document a pending request
// just as well as a settled one. The object path is derived from the
// request ID so a retry after a half-done attach overwrites cleanly.
func (s *Service) Attach(ctx context.Context, requestID uuid.UUID, data []byte) (string, error) {
	if s.uploader == nil {
		return "", apperr.Attachment("receipt storage is not configured", nil)
	}
	if len(data) == 0 {
		return "", apperr.Attachment("empty file", nil)
	}
	if len(data) > MaxReceiptBytes {
		return "", apperr.Attachment(fmt.Sprintf("file is %d bytes, limit is %d", len(data), MaxReceiptBytes), nil)
	}
	contentType := http.DetectContentType(data)
	if !allowedContentType(contentType) {
		return "", apperr.Attachment("unsupported content type "+contentType, nil)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.requests.GetByID(ctx, requestID); err != nil {
		return "", err
	}

	objectPath := fmt.Sprintf("receipts/%s%s", requestID, extensionFor(contentType))
	url, err := s.uploader.Upload(ctx, objectPath, data, contentType)
	if err != nil {
		return "", apperr.Attachment("upload failed", err)
	}
	if err := s.requests.SetReceiptURL(ctx, requestID, url); err != nil {
		// The blob landed but the reference didn't; retrying re-uploads
		// to the same path and records the same URL.
		return "", apperr.Attachment("uploaded but failed to record receipt url, retry", err)
	}
	return url, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func allowedContentType(ct string) bool {
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

func extensionFor(ct string) string {
	switch ct {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
