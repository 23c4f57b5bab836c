// Package imagedata turns an uploaded image into an inline data URI.
package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
)

// DefaultMaxBytes keeps a data URI within typical browser storage quotas.
const DefaultMaxBytes = 2 << 20

var (
	ErrEmpty    = errors.New("upload is empty")
	ErrTooLarge = errors.New("upload is too large")
	ErrNotImage = errors.New("upload is not an image")
)

// Reader decodes an upload without blocking the caller. done runs on the
// card's loop.
type Reader interface {
	Read(upload *models.Upload, done func(dataURI string, err error))
}

// AsyncReader reads on its own goroutine and posts the result back through
// the scheduler.
type AsyncReader struct {
	sched    scheduler.Scheduler
	maxBytes int64
}

func NewAsyncReader(sched scheduler.Scheduler, maxBytes int64) *AsyncReader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &AsyncReader{sched: sched, maxBytes: maxBytes}
}

func (r *AsyncReader) Read(upload *models.Upload, done func(string, error)) {
	go func() {
		uri, err := DataURI(upload, r.maxBytes)
		r.sched.Post(func() { done(uri, err) })
	}()
}

// DataURI reads upload fully and encodes it as data:<mime>;base64,<payload>.
func DataURI(upload *models.Upload, maxBytes int64) (string, error) {
	if upload == nil || upload.Open == nil {
		return "", ErrEmpty
	}
	if maxBytes > 0 && upload.Size > maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, upload.Size)
	}

	f, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if maxBytes > 0 {
		src = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", ErrTooLarge
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mime.String())
	}

	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
