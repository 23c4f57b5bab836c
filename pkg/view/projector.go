// Package view derives the rendered card from persisted state.
package view

import (
	"strconv"
	"time"

	"github.com/medreza/honcho-coupon-card/pkg/format"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/sirupsen/logrus"
)

// Projector writes persisted state into a View. Projecting twice over
// unchanged storage yields the same View.
type Projector struct {
	repo     *repository.StateRepository
	offer    models.Offer
	variant  models.Variant
	location *time.Location
}

func NewProjector(repo *repository.StateRepository, offer models.Offer, variant models.Variant, loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{repo: repo, offer: offer, variant: variant, location: loc}
}

// Offer returns the compiled-in defaults the projector falls back to.
func (p *Projector) Offer() models.Offer {
	return p.offer
}

// Project renders redemption, customization and the bookmark.
func (p *Projector) Project(v *models.View) {
	p.ProjectCustomization(v)
	p.ProjectSaved(v)
	p.ProjectRedemption(v)
}

// ProjectRedemption toggles the badge, the primary action and the hero's
// redeemed styling.
func (p *Projector) ProjectRedemption(v *models.View) {
	raw, redeemed := p.repo.Get(models.KeyRedeemedAt)

	v.Redeemed = redeemed
	v.Badge = models.Badge{Visible: redeemed}
	if !redeemed {
		v.Action = models.Action{Visible: true, Label: p.offer.ActionLabel}
		return
	}

	v.Action.Visible = false
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logrus.WithField("value", raw).Warn("ProjectRedemption: Unreadable redemption timestamp")
		return
	}
	at := time.UnixMilli(ms).In(p.location)
	if p.variant.SplitDateTimeDisplay {
		v.Badge.Date = format.Date(at)
		v.Badge.Time = format.Time(at)
	} else {
		v.Badge.DateTime = format.DateTime(at)
	}
}

// ProjectCustomization renders every customizable field from storage,
// falling back to the offer defaults.
func (p *Projector) ProjectCustomization(v *models.View) {
	v.Title = p.stored(models.KeyTitle, p.offer.Title)
	v.Legal = p.stored(models.KeyLegal, p.offer.Legal)
	v.Discount = p.stored(models.KeyDiscount, p.offer.Discount)
	v.ValidUntil = p.stored(models.KeyValidUntil, p.offer.ValidUntil)
	v.ImageSrc = p.stored(models.KeyImage, p.offer.ImageSrc)
}

func (p *Projector) ProjectSaved(v *models.View) {
	raw, ok := p.repo.Get(models.KeySaved)
	v.Saved = ok && raw == models.SavedValue
}

// DiscountNumeral is the raw percent the edit form starts from.
func (p *Projector) DiscountNumeral() string {
	if pct, ok := p.repo.Get(models.KeyDiscountPercent); ok && pct != "" {
		return pct
	}
	// Labels saved before the percent key existed.
	if label, ok := p.repo.Get(models.KeyDiscount); ok {
		if n := format.DiscountNumeral(label); n != "" {
			return n
		}
	}
	return strconv.Itoa(p.offer.DiscountPercent)
}

func (p *Projector) stored(key, fallback string) string {
	if v, ok := p.repo.Get(key); ok && v != "" {
		return v
	}
	return fallback
}
