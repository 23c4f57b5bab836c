// Package redeem marks the coupon used and takes it back.
package redeem

import (
	"strconv"
	"time"

	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
	"github.com/medreza/honcho-coupon-card/pkg/sheet"
	"github.com/medreza/honcho-coupon-card/pkg/view"
	"github.com/sirupsen/logrus"
)

// DefaultDelay stands in for the round trip a real redemption would make.
const DefaultDelay = 500 * time.Millisecond

type Controller struct {
	repo      *repository.StateRepository
	view      *models.View
	sheets    *sheet.Controller
	projector *view.Projector
	sched     scheduler.Scheduler
	variant   models.Variant
	delay     time.Duration

	pending scheduler.Timer
}

func NewController(
	repo *repository.StateRepository,
	v *models.View,
	sheets *sheet.Controller,
	projector *view.Projector,
	sched scheduler.Scheduler,
	variant models.Variant,
	delay time.Duration,
) *Controller {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Controller{
		repo:      repo,
		view:      v,
		sheets:    sheets,
		projector: projector,
		sched:     sched,
		variant:   variant,
		delay:     delay,
	}
}

// Pending reports whether a confirmation is waiting out its delay.
func (c *Controller) Pending() bool {
	return c.pending != nil
}

// Confirm shows the loading state and records the redemption, after the
// delay when the variant has one. Repeated confirms while loading are
// ignored.
func (c *Controller) Confirm() {
	if c.view.Confirm.ConfirmDisabled {
		return
	}
	c.view.Confirm.ConfirmDisabled = true
	c.view.Confirm.Loading = true
	c.view.Confirm.ActionsVisible = false

	if !c.variant.HasRedemptionDelay {
		c.finish()
		return
	}
	c.pending = c.sched.AfterFunc(c.delay, c.finish)
}

func (c *Controller) finish() {
	c.pending = nil
	now := c.sched.Now()
	c.repo.Set(models.KeyRedeemedAt, strconv.FormatInt(now.UnixMilli(), 10))
	logrus.WithField("redeemed_at", now.UnixMilli()).Info("Confirm: Coupon redeemed")

	c.projector.ProjectRedemption(c.view)
	c.sheets.CloseConfirm()
	c.restore()
}

func (c *Controller) restore() {
	c.view.Confirm.ConfirmDisabled = false
	c.view.Confirm.Loading = false
	c.view.Confirm.ActionsVisible = true
}

// Back returns the card to its unredeemed state. A confirmation still
// waiting out its delay is cancelled and never lands.
func (c *Controller) Back() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
		logrus.Info("Back: Pending redemption cancelled")
	}
	c.restore()
	c.sheets.CloseConfirm()
	c.sheets.CloseEdit()

	c.repo.Remove(models.KeyRedeemedAt)
	c.projector.ProjectRedemption(c.view)
	c.view.ScrollY = 0
}
