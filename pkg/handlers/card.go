package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-coupon-card/pkg/card"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/sirupsen/logrus"
)

type CardHandler struct {
	card *card.Card
}

func NewCardHandler(c *card.Card) *CardHandler {
	return &CardHandler{card: c}
}

// Register mounts the card routes on group.
func (h *CardHandler) Register(group *gin.RouterGroup) {
	group.GET("", h.GetCard)
	group.POST("/action", h.event(h.card.ClickAction))
	group.POST("/confirm", h.event(h.card.Confirm))
	group.POST("/confirm/cancel", h.event(h.card.CancelConfirm))
	group.POST("/overlay", h.event(h.card.ClickOverlay))
	group.POST("/back", h.event(h.card.Back))
	group.POST("/save", h.event(h.card.ToggleSaved))
	group.POST("/edit/open", h.event(h.card.OpenEdit))
	group.POST("/edit/hitbox", h.event(h.card.TapEditHitbox))
	group.PUT("/edit/draft", h.UpdateDraft)
	group.POST("/edit/commit", h.CommitEdit)
	group.POST("/edit/cancel", h.event(h.card.CancelEdit))
	group.POST("/edit/reset", h.event(h.card.ResetEdit))
}

func (h *CardHandler) GetCard(c *gin.Context) {
	c.JSON(http.StatusOK, h.card.Snapshot())
}

// event adapts a parameterless card event to a handler.
func (h *CardHandler) event(fn func() models.View) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, fn())
	}
}

func (h *CardHandler) UpdateDraft(c *gin.Context) {
	var req models.DraftRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithField("error", err).Warn("UpdateDraft: Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.card.UpdateDraft(req))
}

func (h *CardHandler) CommitEdit(c *gin.Context) {
	var req models.CommitRequest
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithField("error", err).Warn("CommitEdit: Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	upload, err := readUpload(c)
	if err != nil {
		logrus.WithError(err).Warn("CommitEdit: Unreadable image part")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload"})
		return
	}

	c.JSON(http.StatusOK, h.card.SaveEdit(req, upload))
}

// readUpload buffers the optional image part. The multipart temp files are
// removed when the request ends, before the card gets to read them.
func readUpload(c *gin.Context) (*models.Upload, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &models.Upload{
		Filename: fh.Filename,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}, nil
}
