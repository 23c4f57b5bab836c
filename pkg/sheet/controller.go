// Package sheet sequences the confirmation and edit panels through
// closed → opening → open → closing → closed.
package sheet

import (
	"time"

	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
)

// DefaultCloseDelay matches the CSS slide-out transition.
const DefaultCloseDelay = 180 * time.Millisecond

// Controller owns the panel, overlay and sheet-open fields of a View. At
// most one panel is logically open: opening one closes the other.
type Controller struct {
	sched      scheduler.Scheduler
	view       *models.View
	closeDelay time.Duration

	editOpen bool
	// Bumped on every close so stale close timers can tell they lost.
	confirmGen int
	editGen    int
}

func NewController(sched scheduler.Scheduler, view *models.View, closeDelay time.Duration) *Controller {
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	return &Controller{sched: sched, view: view, closeDelay: closeDelay}
}

// EditOpen reports whether the edit panel is the logically open one.
func (c *Controller) EditOpen() bool {
	return c.editOpen
}

func (c *Controller) OpenConfirm() {
	if active(c.view.Edit.Panel) {
		c.CloseEdit()
	}
	c.open(&c.view.Confirm.Panel, &c.confirmGen)
}

func (c *Controller) CloseConfirm() {
	c.close(&c.view.Confirm.Panel, &c.confirmGen)
}

func (c *Controller) OpenEdit() {
	if active(c.view.Confirm.Panel) {
		c.CloseConfirm()
	}
	c.open(&c.view.Edit.Panel, &c.editGen)
	c.editOpen = true
}

func (c *Controller) CloseEdit() {
	c.close(&c.view.Edit.Panel, &c.editGen)
	c.editOpen = false
}

// ClickOverlay closes whichever panel is open, the confirmation panel when
// neither is flagged.
func (c *Controller) ClickOverlay() {
	if c.editOpen {
		c.CloseEdit()
		return
	}
	c.CloseConfirm()
}

func active(p models.Panel) bool {
	return p.State == models.PanelOpening || p.State == models.PanelOpen
}

func (c *Controller) open(p *models.Panel, gen *int) {
	if active(*p) {
		return
	}
	c.view.SheetOpen = true
	c.view.OverlayVisible = true
	p.Visible = true
	p.State = models.PanelOpening
	// A frame has to pass with the element shown before the open class is
	// added, otherwise the transition does not run.
	opened := *gen
	c.sched.NextFrame(func() {
		if *gen != opened || p.State != models.PanelOpening {
			return
		}
		p.OpenClass = true
		p.State = models.PanelOpen
	})
}

func (c *Controller) close(p *models.Panel, gen *int) {
	if !active(*p) {
		return
	}
	p.OpenClass = false
	p.State = models.PanelClosing
	*gen++
	closing := *gen
	c.sched.AfterFunc(c.closeDelay, func() {
		if *gen != closing || p.State != models.PanelClosing {
			return
		}
		p.Visible = false
		p.State = models.PanelClosed
		if !active(c.view.Confirm.Panel) && !active(c.view.Edit.Panel) {
			c.view.OverlayVisible = false
			c.view.SheetOpen = false
		}
	})
}
