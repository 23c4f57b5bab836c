package models

import (
	"io"
)

// Storage keys, one flat string value each.
const (
	KeyRedeemedAt      = "coupon_redeemed_at_v1"
	KeySaved           = "coupon_saved_v1"
	KeyTitle           = "custom_title_v1"
	KeyLegal           = "custom_legal_v1"
	KeyImage           = "custom_image_v1"
	KeyDiscount        = "custom_discount_v1"
	KeyDiscountPercent = "custom_discount_pct_v1"
	KeyValidUntil      = "custom_valid_v1"
)

// SavedValue is stored under KeySaved while the offer is bookmarked.
const SavedValue = "1"

// Offer is the compiled-in content of one offer variant. Any Customization
// field that is absent from storage falls back to the matching Offer field.
type Offer struct {
	Title           string `json:"title"`
	Legal           string `json:"legal"`
	Discount        string `json:"discount"`
	DiscountPercent int    `json:"discount_percent"`
	ImageSrc        string `json:"image_src"`
	ValidUntil      string `json:"valid_until"`
	ActionLabel     string `json:"action_label"`
	ConfirmLead     string `json:"confirm_lead"`
	ConfirmBody     string `json:"confirm_body"`
	ConfirmNote     string `json:"confirm_note"`
}

// DefaultOffer is the Tex Mex campaign the card ships with.
func DefaultOffer() Offer {
	return Offer{
		Title: "Valitsemasi Tex Mex -tuote",
		Legal: "Tällä kupongilla valitsemasi Tex Mex -tuote -25 %. 1 kpl/kuponki. " +
			"Lunastettavissa 15.–30.11.2025 TOK:n Prismasta, S-marketista, Salesta tai ABC-liikennemyymälästä. " +
			"Ei voimassa verkkokaupassa. Ei voi yhdistää muihin etuihin. Ei koske punalaputettuja tuotteita. " +
			"Kuvat esimerkkejä, valikoima vaihtelee myymälöittäin.",
		Discount:        "-25 %",
		DiscountPercent: 25,
		ImageSrc:        "assets/coupon.jpg",
		ValidUntil:      "30.11.2025",
		ActionLabel:     "Näytä myyjälle",
		ConfirmLead:     "Vahvista, että kuponki käytetään nyt.",
		ConfirmBody: "Voit käyttää kupongin vain kerran ja ostotapahtuman yhteydessä. " +
			"Lunasta kuponki painikkeella ja näytä lunastettu kuponki kassalla.",
		ConfirmNote: "Jos haluat käyttää kupongin myöhemmin, paina Peruuta.",
	}
}

// Variant selects between the behaviours the two shipped builds of the card
// disagreed on.
type Variant struct {
	HasRedemptionDelay             bool `json:"has_redemption_delay" mapstructure:"has_redemption_delay"`
	SplitDateTimeDisplay           bool `json:"split_date_time_display" mapstructure:"split_date_time_display"`
	ResetClearsDiscountAndValidity bool `json:"reset_clears_discount_and_validity" mapstructure:"reset_clears_discount_and_validity"`
}

// DefaultVariant is the more complete of the two builds.
func DefaultVariant() Variant {
	return Variant{
		HasRedemptionDelay:             true,
		SplitDateTimeDisplay:           true,
		ResetClearsDiscountAndValidity: true,
	}
}

// PanelState is the lifecycle of a sheet.
type PanelState string

const (
	PanelClosed  PanelState = "closed"
	PanelOpening PanelState = "opening"
	PanelOpen    PanelState = "open"
	PanelClosing PanelState = "closing"
)

// Panel is the rendered state of one sheet element.
type Panel struct {
	State PanelState `json:"state"`
	// Visible is false while the element carries the "hidden" class.
	Visible bool `json:"visible"`
	// OpenClass mirrors the "open" class that drives the slide-in transition.
	OpenClass bool `json:"open_class"`
}

// Badge is the "redeemed" status block.
type Badge struct {
	Visible  bool   `json:"visible"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	DateTime string `json:"date_time,omitempty"`
}

// Action is the primary call to action.
type Action struct {
	Visible bool   `json:"visible"`
	Label   string `json:"label"`
}

// ConfirmSheet is the confirmation panel with its loading presentation.
type ConfirmSheet struct {
	Panel
	Lead            string `json:"lead"`
	Body            string `json:"body"`
	Note            string `json:"note"`
	Loading         bool   `json:"loading"`
	ConfirmDisabled bool   `json:"confirm_disabled"`
	ActionsVisible  bool   `json:"actions_visible"`
}

// Upload is a user-selected file waiting to be read.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Draft holds the edit form inputs while the edit sheet is open.
type Draft struct {
	Title      string  `json:"title"`
	Legal      string  `json:"legal"`
	Discount   string  `json:"discount"`
	ValidUntil string  `json:"valid_until"`
	Image      *Upload `json:"-"`
}

// EditSheet is the customization panel.
type EditSheet struct {
	Panel
	Draft Draft `json:"draft"`
}

// View is the whole rendered card. Controllers mutate it; handlers return
// copies of it.
type View struct {
	Title      string `json:"title"`
	Legal      string `json:"legal"`
	Discount   string `json:"discount"`
	ValidUntil string `json:"valid_until"`
	ImageSrc   string `json:"image_src"`

	// Redeemed mirrors the "redeemed" class on the hero container.
	Redeemed bool   `json:"redeemed"`
	Badge    Badge  `json:"badge"`
	Action   Action `json:"action"`
	Saved    bool   `json:"saved"`

	// SheetOpen mirrors the "sheet-open" marker on the app root.
	SheetOpen      bool         `json:"sheet_open"`
	OverlayVisible bool         `json:"overlay_visible"`
	Confirm        ConfirmSheet `json:"confirm"`
	Edit           EditSheet    `json:"edit"`

	ScrollY int `json:"scroll_y"`
}

// NewView returns a view with both sheets closed and the confirmation copy
// of offer in place.
func NewView(offer Offer) *View {
	return &View{
		Confirm: ConfirmSheet{
			Panel:          Panel{State: PanelClosed},
			Lead:           offer.ConfirmLead,
			Body:           offer.ConfirmBody,
			Note:           offer.ConfirmNote,
			ActionsVisible: true,
		},
		Edit: EditSheet{
			Panel: Panel{State: PanelClosed},
		},
	}
}

// Clone returns a copy that shares no mutable state with v.
func (v *View) Clone() View {
	out := *v
	out.Edit.Draft.Image = nil
	return out
}

// DraftRequest updates the edit form without committing it.
type DraftRequest struct {
	Title      *string `json:"title" form:"title" binding:"omitempty,max=200"`
	Legal      *string `json:"legal" form:"legal" binding:"omitempty,max=2000"`
	Discount   *string `json:"discount" form:"discount" binding:"omitempty,max=16"`
	ValidUntil *string `json:"valid_until" form:"valid" binding:"omitempty,max=32"`
}

// CommitRequest is the multipart edit submission. The image part is read
// separately.
type CommitRequest struct {
	Title      string `form:"title" binding:"max=200"`
	Legal      string `form:"legal" binding:"max=2000"`
	Discount   string `form:"discount" binding:"max=16"`
	ValidUntil string `form:"valid" binding:"max=32"`
}
