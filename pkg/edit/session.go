// Package edit runs the customization workflow behind the edit sheet.
package edit

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/medreza/honcho-coupon-card/pkg/format"
	"github.com/medreza/honcho-coupon-card/pkg/imagedata"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/medreza/honcho-coupon-card/pkg/sheet"
	"github.com/medreza/honcho-coupon-card/pkg/view"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// Session owns the edit draft and commits it to storage and the view.
type Session struct {
	repo      *repository.StateRepository
	view      *models.View
	sheets    *sheet.Controller
	projector *view.Projector
	reader    imagedata.Reader
	variant   models.Variant
}

func NewSession(
	repo *repository.StateRepository,
	v *models.View,
	sheets *sheet.Controller,
	projector *view.Projector,
	reader imagedata.Reader,
	variant models.Variant,
) *Session {
	return &Session{
		repo:      repo,
		view:      v,
		sheets:    sheets,
		projector: projector,
		reader:    reader,
		variant:   variant,
	}
}

// Open prefills the draft from what is currently shown and opens the sheet.
// It does nothing while the sheet is already open, so a half-typed draft
// survives a second open.
func (s *Session) Open() {
	if s.sheets.EditOpen() {
		return
	}
	s.view.Edit.Draft = models.Draft{
		Title:      s.view.Title,
		Legal:      s.view.Legal,
		Discount:   s.projector.DiscountNumeral(),
		ValidUntil: s.view.ValidUntil,
	}
	s.sheets.OpenEdit()
}

// Toggle is the edit hitbox: the first tap opens, the second commits.
func (s *Session) Toggle() {
	if !s.sheets.EditOpen() {
		s.Open()
		return
	}
	s.Commit()
}

// Cancel closes the sheet and drops the draft.
func (s *Session) Cancel() {
	s.view.Edit.Draft = models.Draft{}
	s.sheets.CloseEdit()
}

// Update replaces the draft inputs that are non-nil.
func (s *Session) Update(title, legal, discount, validUntil *string) {
	d := &s.view.Edit.Draft
	if title != nil {
		d.Title = *title
	}
	if legal != nil {
		d.Legal = *legal
	}
	if discount != nil {
		d.Discount = *discount
	}
	if validUntil != nil {
		d.ValidUntil = *validUntil
	}
}

// SelectImage attaches a file to the draft.
func (s *Session) SelectImage(upload *models.Upload) {
	s.view.Edit.Draft.Image = upload
}

// pendingEdit is the normalised draft. Empty fields mean "keep".
type pendingEdit struct {
	title      string
	legal      string
	discount   string
	percent    int
	validUntil string
}

func (s *Session) normalize(d models.Draft) pendingEdit {
	p := pendingEdit{
		title: strings.TrimSpace(d.Title),
		legal: strings.TrimSpace(d.Legal),
	}
	if n, ok := format.DiscountPercent(strings.TrimSpace(d.Discount)); ok {
		p.percent = n
		p.discount = format.DiscountLabel(n)
	}
	valid := strings.TrimSpace(d.ValidUntil)
	if valid != "" {
		if err := validate.Var(valid, "datetime=02.01.2006"); err != nil {
			logrus.WithField("valid_until", valid).Debug("Commit: Ignoring malformed validity date")
		} else {
			p.validUntil = valid
		}
	}
	return p
}

// Commit applies the draft. With an image selected, the rest of the commit
// waits for the image to be read; a failed or empty read leaves the image
// out but still applies the other fields.
func (s *Session) Commit() {
	d := s.view.Edit.Draft
	pending := s.normalize(d)

	if d.Image == nil {
		s.finalize(pending, "")
		return
	}

	s.view.Edit.Draft.Image = nil
	s.reader.Read(d.Image, func(dataURI string, err error) {
		if err != nil {
			logrus.WithField("filename", d.Image.Filename).WithError(err).Warn("Commit: Image read failed, keeping current image")
			dataURI = ""
		}
		s.finalize(pending, dataURI)
	})
}

func (s *Session) finalize(p pendingEdit, dataURI string) {
	if dataURI != "" {
		s.view.ImageSrc = dataURI
		s.repo.Set(models.KeyImage, dataURI)
	}
	if p.title != "" {
		s.view.Title = p.title
		s.repo.Set(models.KeyTitle, p.title)
	}
	if p.legal != "" {
		s.view.Legal = p.legal
		s.repo.Set(models.KeyLegal, p.legal)
	}
	if p.discount != "" {
		s.view.Discount = p.discount
		s.repo.Set(models.KeyDiscount, p.discount)
		s.repo.Set(models.KeyDiscountPercent, strconv.Itoa(p.percent))
	}
	if p.validUntil != "" {
		s.view.ValidUntil = p.validUntil
		s.repo.Set(models.KeyValidUntil, p.validUntil)
	}
	s.sheets.CloseEdit()
}

// Reset drops every customization, shows the offer defaults and writes them
// back so a reload keeps showing them.
func (s *Session) Reset() {
	offer := s.projector.Offer()
	clearAll := s.variant.ResetClearsDiscountAndValidity

	s.repo.Remove(models.KeyTitle)
	s.repo.Remove(models.KeyLegal)
	s.repo.Remove(models.KeyImage)
	if clearAll {
		s.repo.Remove(models.KeyDiscount)
		s.repo.Remove(models.KeyDiscountPercent)
		s.repo.Remove(models.KeyValidUntil)
	}

	s.view.Title = offer.Title
	s.view.Legal = offer.Legal
	s.view.ImageSrc = offer.ImageSrc
	s.repo.Set(models.KeyTitle, offer.Title)
	s.repo.Set(models.KeyLegal, offer.Legal)
	if clearAll {
		s.view.Discount = offer.Discount
		s.view.ValidUntil = offer.ValidUntil
		s.repo.Set(models.KeyDiscount, offer.Discount)
		s.repo.Set(models.KeyDiscountPercent, strconv.Itoa(offer.DiscountPercent))
		s.repo.Set(models.KeyValidUntil, offer.ValidUntil)
	}

	s.view.Edit.Draft = models.Draft{
		Title:      s.view.Title,
		Legal:      s.view.Legal,
		Discount:   s.projector.DiscountNumeral(),
		ValidUntil: s.view.ValidUntil,
	}
	s.sheets.CloseEdit()
}
