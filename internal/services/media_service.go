package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/balasin/balasin/internal/providers/transport"
	"github.com/balasin/balasin/internal/storage"
	"github.com/balasin/balasin/internal/utils"

	"github.com/google/uuid"
)

// MediaService pulls an inbound attachment off the transport and persists it
// to object storage, returning the stored URL.
type MediaService interface {
	Persist(ctx context.Context, instance, merchantID string, media *transport.InboundMedia) (string, error)
}

type mediaService struct {
	gateway  transport.Gateway
	uploader storage.Uploader
}

func NewMediaService(gateway transport.Gateway, uploader storage.Uploader) MediaService {
	return &mediaService{gateway: gateway, uploader: uploader}
}

func (s *mediaService) Persist(ctx context.Context, instance, merchantID string, media *transport.InboundMedia) (string, error) {
	const op = "MediaService.Persist"

	if media == nil || media.MessageID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "media message id is required", nil)
	}

	data, mimeType, err := s.gateway.DownloadMedia(ctx, instance, media.MessageID)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to download media", err)
	}
	if mimeType == "" {
		mimeType = media.Mimetype
	}

	objectName := "wa-media/" + merchantID + "/" + uuid.NewString() + extensionFor(mimeType, media.Kind)
	url, err := s.uploader.Upload(ctx, objectName, mimeType, bytes.NewReader(data))
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to upload media", err)
	}
	return url, nil
}

func extensionFor(mimeType, kind string) string {
	switch {
	case strings.Contains(mimeType, "jpeg"):
		return ".jpg"
	case strings.Contains(mimeType, "png"):
		return ".png"
	case strings.Contains(mimeType, "webp"):
		return ".webp"
	case strings.Contains(mimeType, "pdf"):
		return ".pdf"
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	case strings.Contains(mimeType, "mp4"):
		return ".mp4"
	}
	switch kind {
	case "image":
		return ".jpg"
	case "audio":
		return ".ogg"
	case "video":
		return ".mp4"
	}
	return ".bin"
}
