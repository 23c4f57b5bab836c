// Package card wires the coupon card's controllers together and delivers
// user events to them on a single event loop.
package card

import (
	"time"

	"github.com/medreza/honcho-coupon-card/pkg/edit"
	"github.com/medreza/honcho-coupon-card/pkg/imagedata"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/redeem"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
	"github.com/medreza/honcho-coupon-card/pkg/sheet"
	"github.com/medreza/honcho-coupon-card/pkg/view"
	"github.com/sirupsen/logrus"
)

// Options configures a Card. Zero durations fall back to package defaults.
type Options struct {
	Offer         models.Offer
	Variant       models.Variant
	ConfirmDelay  time.Duration
	CloseDelay    time.Duration
	Location      *time.Location
	MaxImageBytes int64
}

// Card is one coupon card. Every exported method runs on the scheduler's
// loop, so callers may use it from any goroutine.
type Card struct {
	sched     scheduler.Scheduler
	view      *models.View
	projector *view.Projector
	sheets    *sheet.Controller
	edit      *edit.Session
	redeem    *redeem.Controller
	repo      *repository.StateRepository
}

// New builds a card over repo. A nil reader reads uploads with an
// imagedata.AsyncReader.
func New(repo *repository.StateRepository, sched scheduler.Scheduler, reader imagedata.Reader, opts Options) *Card {
	if reader == nil {
		reader = imagedata.NewAsyncReader(sched, opts.MaxImageBytes)
	}

	v := models.NewView(opts.Offer)
	projector := view.NewProjector(repo, opts.Offer, opts.Variant, opts.Location)
	sheets := sheet.NewController(sched, v, opts.CloseDelay)

	return &Card{
		sched:     sched,
		view:      v,
		projector: projector,
		sheets:    sheets,
		edit:      edit.NewSession(repo, v, sheets, projector, reader, opts.Variant),
		redeem:    redeem.NewController(repo, v, sheets, projector, sched, opts.Variant, opts.ConfirmDelay),
		repo:      repo,
	}
}

// Load renders the card from storage, as on page load.
func (c *Card) Load() models.View {
	return c.run(func() {
		c.projector.Project(c.view)
	})
}

// Snapshot returns a copy of the current view.
func (c *Card) Snapshot() models.View {
	return c.run(func() {})
}

func (c *Card) run(fn func()) models.View {
	var out models.View
	c.sched.Do(func() {
		fn()
		out = c.view.Clone()
	})
	return out
}

// ClickAction opens the confirmation sheet. The action is hidden once
// redeemed, so clicks then are ignored.
func (c *Card) ClickAction() models.View {
	return c.run(func() {
		if !c.view.Action.Visible {
			logrus.Debug("ClickAction: Action is hidden")
			return
		}
		c.sheets.OpenConfirm()
	})
}

func (c *Card) CancelConfirm() models.View {
	return c.run(func() {
		if c.view.Confirm.ConfirmDisabled {
			// The cancel button sits in the hidden actions row while loading.
			return
		}
		c.sheets.CloseConfirm()
	})
}

func (c *Card) ClickOverlay() models.View {
	return c.run(func() {
		if !c.view.OverlayVisible {
			return
		}
		c.sheets.ClickOverlay()
	})
}

// Confirm redeems the coupon. Only reachable while the confirmation sheet
// is opening or open.
func (c *Card) Confirm() models.View {
	return c.run(func() {
		if s := c.view.Confirm.State; s != models.PanelOpening && s != models.PanelOpen {
			logrus.Debug("Confirm: Confirmation sheet is not open")
			return
		}
		c.redeem.Confirm()
	})
}

func (c *Card) Back() models.View {
	return c.run(c.redeem.Back)
}

// ToggleSaved flips the bookmark.
func (c *Card) ToggleSaved() models.View {
	return c.run(func() {
		c.view.Saved = !c.view.Saved
		if c.view.Saved {
			c.repo.Set(models.KeySaved, models.SavedValue)
		} else {
			c.repo.Remove(models.KeySaved)
		}
	})
}

func (c *Card) TapEditHitbox() models.View {
	return c.run(c.edit.Toggle)
}

func (c *Card) OpenEdit() models.View {
	return c.run(c.edit.Open)
}

// UpdateDraft changes the non-nil draft inputs while the edit sheet is open.
func (c *Card) UpdateDraft(req models.DraftRequest) models.View {
	return c.run(func() {
		if !c.sheets.EditOpen() {
			return
		}
		c.edit.Update(req.Title, req.Legal, req.Discount, req.ValidUntil)
	})
}

// SaveEdit fills the whole draft and commits it. The edit sheet is opened
// first when needed, so a form post works from any state.
func (c *Card) SaveEdit(req models.CommitRequest, image *models.Upload) models.View {
	return c.run(func() {
		if !c.sheets.EditOpen() {
			c.edit.Open()
		}
		c.edit.Update(&req.Title, &req.Legal, &req.Discount, &req.ValidUntil)
		if image != nil {
			c.edit.SelectImage(image)
		}
		c.edit.Commit()
	})
}

func (c *Card) CancelEdit() models.View {
	return c.run(c.edit.Cancel)
}

func (c *Card) ResetEdit() models.View {
	return c.run(c.edit.Reset)
}
