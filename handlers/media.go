package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"socialapi/database"
	"socialapi/models"

	"github.com/gin-gonic/gin"
)

var allowedMedia = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
}

func (h *Handler) storageReady(c *gin.Context) bool {
	if h.storage == nil || h.media == nil {
		message(c, http.StatusServiceUnavailable, "Media storage is not configured")
		return false
	}
	return true
}

// UploadMedia handles POST /api/media with a multipart "file" field.
func (h *Handler) UploadMedia(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if !h.storageReady(c) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		validationFailed(c, bodyError("File is required", "file"))
		return
	}
	if header.Size > h.maxUploadSize {
		validationFailed(c, bodyError("File is too large", "file"))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.serverError(c, "UploadMedia", err)
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.serverError(c, "UploadMedia", err)
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !allowedMedia[contentType] {
		validationFailed(c, bodyError("Unsupported file type", "file"))
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	obj, err := h.storage.Upload(ctx, userID.Hex(), io.MultiReader(bytes.NewReader(head), file), header.Size, contentType)
	if err != nil {
		h.serverError(c, "UploadMedia", err)
		return
	}

	media := &models.Media{
		User:        userID,
		URL:         obj.URL,
		StorageKey:  obj.Key,
		ContentType: contentType,
		Size:        header.Size,
		Date:        time.Now(),
	}
	if err := h.media.Create(ctx, media); err != nil {
		if derr := h.storage.Delete(ctx, obj.Key); derr != nil {
			h.log.WithError(derr).WithField("key", obj.Key).Warn("failed to remove orphaned blob")
		}
		h.serverError(c, "UploadMedia", err)
		return
	}

	c.JSON(http.StatusOK, media)
}

// ListMedia handles GET /api/media.
func (h *Handler) ListMedia(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if !h.storageReady(c) {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	items, err := h.media.ListByUser(ctx, userID)
	if err != nil {
		h.serverError(c, "ListMedia", err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// DeleteMedia handles DELETE /api/media/:media_id.
func (h *Handler) DeleteMedia(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if !h.storageReady(c) {
		return
	}
	mediaID, ok := pathID(c, "media_id")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	media, err := h.media.FindByID(ctx, mediaID)
	if errors.Is(err, database.ErrNotFound) {
		message(c, http.StatusBadRequest, "There is no media")
		return
	}
	if err != nil {
		h.serverError(c, "DeleteMedia", err)
		return
	}
	if media.User != userID {
		message(c, http.StatusBadRequest, "Don't try to delete other user's media")
		return
	}

	if err := h.media.Delete(ctx, mediaID); err != nil && !errors.Is(err, database.ErrNotFound) {
		h.serverError(c, "DeleteMedia", err)
		return
	}
	if err := h.storage.Delete(ctx, media.StorageKey); err != nil {
		h.log.WithError(err).WithField("key", media.StorageKey).Warn("failed to remove media blob")
	}

	message(c, http.StatusOK, "Media deleted!")
}
