package card

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/medreza/honcho-coupon-card/pkg/database"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, time.November, 20, 10, 30, 0, 0, time.UTC)

func setupCard(t *testing.T, kv database.KV) (*Card, *scheduler.Virtual) {
	t.Helper()
	sched := scheduler.NewVirtual(start)
	c := New(repository.NewStateRepository(kv, ""), sched, nil, Options{
		Offer:    models.DefaultOffer(),
		Variant:  models.DefaultVariant(),
		Location: time.UTC,
	})
	c.Load()
	return c, sched
}

func TestCard_RedeemFlow(t *testing.T) {
	c, sched := setupCard(t, database.NewMemory())

	v := c.ClickAction()
	assert.True(t, v.Confirm.Visible)
	sched.RunFrames()

	v = c.Confirm()
	assert.True(t, v.Confirm.Loading)

	sched.Advance(time.Second)
	v = c.Snapshot()
	assert.True(t, v.Badge.Visible)
	assert.Equal(t, "20.11.2025", v.Badge.Date)
	assert.Equal(t, "10:30", v.Badge.Time)
	assert.False(t, v.Action.Visible)
	assert.Equal(t, models.PanelClosed, v.Confirm.State)

	v = c.ClickAction()
	assert.False(t, v.Confirm.Visible, "hidden action cannot be clicked")

	v = c.Back()
	assert.True(t, v.Action.Visible)
	assert.False(t, v.Badge.Visible)
}

func TestCard_ConfirmNeedsVisibleSheet(t *testing.T) {
	c, sched := setupCard(t, database.NewMemory())

	c.Confirm()
	sched.Advance(time.Second)
	assert.False(t, c.Snapshot().Badge.Visible)
}

func TestCard_CancelIgnoredWhileLoading(t *testing.T) {
	c, sched := setupCard(t, database.NewMemory())
	c.ClickAction()
	sched.RunFrames()
	c.Confirm()

	v := c.CancelConfirm()
	assert.Equal(t, models.PanelOpen, v.Confirm.State)

	sched.Advance(time.Second)
	assert.True(t, c.Snapshot().Redeemed)
}

func TestCard_ToggleSaved(t *testing.T) {
	mem := database.NewMemory()
	c, _ := setupCard(t, mem)

	assert.True(t, c.ToggleSaved().Saved)

	reloaded, _ := setupCard(t, mem)
	assert.True(t, reloaded.Snapshot().Saved)

	assert.False(t, reloaded.ToggleSaved().Saved)
	again, _ := setupCard(t, mem)
	assert.False(t, again.Snapshot().Saved)
}

func TestCard_EditAndReload(t *testing.T) {
	mem := database.NewMemory()
	c, sched := setupCard(t, mem)

	v := c.TapEditHitbox()
	assert.Equal(t, "25", v.Edit.Draft.Discount)
	sched.RunFrames()

	title := "New Title"
	discount := "150"
	c.UpdateDraft(models.DraftRequest{Title: &title, Discount: &discount})
	v = c.TapEditHitbox()
	assert.Equal(t, "New Title", v.Title)
	assert.Equal(t, "-100 %", v.Discount)
	assert.Equal(t, models.DefaultOffer().Legal, v.Legal)
	assert.Equal(t, "30.11.2025", v.ValidUntil)

	reloaded, _ := setupCard(t, mem)
	rv := reloaded.Snapshot()
	assert.Equal(t, "New Title", rv.Title)
	assert.Equal(t, "-100 %", rv.Discount)

	v = reloaded.ResetEdit()
	assert.Equal(t, models.DefaultOffer().Title, v.Title)
	again, _ := setupCard(t, mem)
	assert.Equal(t, v.Title, again.Snapshot().Title)
	assert.Equal(t, v.Discount, again.Snapshot().Discount)
}

func TestCard_UpdateDraftNeedsOpenSheet(t *testing.T) {
	c, _ := setupCard(t, database.NewMemory())
	title := "Ei käy"

	v := c.UpdateDraft(models.DraftRequest{Title: &title})
	assert.Empty(t, v.Edit.Draft.Title)
}

func TestCard_SaveEditWithImage(t *testing.T) {
	c, sched := setupCard(t, database.NewMemory())

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()
	up := &models.Upload{
		Filename: "hero.png",
		Size:     int64(len(data)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}

	v := c.SaveEdit(models.CommitRequest{Title: "Kuvallinen"}, up)
	assert.Equal(t, models.DefaultOffer().Title, v.Title, "commit waits for the image")

	require.Eventually(t, func() bool {
		sched.RunPosted()
		return strings.HasPrefix(c.Snapshot().ImageSrc, "data:image/png;base64,")
	}, time.Second, time.Millisecond)
	assert.Equal(t, "Kuvallinen", c.Snapshot().Title)
}

func TestCard_OverlayRouting(t *testing.T) {
	c, sched := setupCard(t, database.NewMemory())

	v := c.ClickOverlay()
	assert.False(t, v.OverlayVisible, "overlay click without a sheet does nothing")

	c.OpenEdit()
	sched.RunFrames()
	c.ClickOverlay()
	sched.Advance(time.Second)

	v = c.Snapshot()
	assert.Equal(t, models.PanelClosed, v.Edit.State)
	assert.False(t, v.OverlayVisible)
	assert.False(t, v.SheetOpen)
}

func TestCard_CancelEdit(t *testing.T) {
	c, sched := setupCard(t, database.NewMemory())
	c.OpenEdit()
	sched.RunFrames()
	title := "Peruttu"
	c.UpdateDraft(models.DraftRequest{Title: &title})

	v := c.CancelEdit()
	assert.Equal(t, models.DefaultOffer().Title, v.Title)
	assert.Equal(t, models.PanelClosing, v.Edit.State)
}

func TestCard_Badger(t *testing.T) {
	dir := t.TempDir()

	kv, err := database.OpenBadger(dir)
	require.NoError(t, err)
	c, sched := setupCard(t, kv)
	c.ClickAction()
	sched.RunFrames()
	c.Confirm()
	sched.Advance(time.Second)
	require.NoError(t, kv.Close())

	kv, err = database.OpenBadger(dir)
	require.NoError(t, err)
	defer kv.Close()
	reloaded, _ := setupCard(t, kv)
	assert.True(t, reloaded.Snapshot().Redeemed)
}
