package course

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kepzesmindenkinek/backend/core"
)

type Course struct {
	ID               int    `json:"id" db:"id"`
	Name             string `json:"name" db:"name"`
	Price            int    `json:"price" db:"price"` // HUF
	Description      string `json:"description" db:"description"`
	Duration         string `json:"duration" db:"duration"`
	ExtraInfo        string `json:"extra_info" db:"extra_info"`
	ForPensioners    bool   `json:"for_pensioners" db:"for_pensioners"`
	ForNonPensioners bool   `json:"for_non_pensioners" db:"for_non_pensioners"`
	Active           bool   `json:"active" db:"active"`
	Slug             string `json:"slug" db:"slug"`
}

// PriceDisplay returns the price with thousands separators.
func (c Course) PriceDisplay() string {
	return core.FormatNumber(c.Price)
}

// DescriptionItems splits the description into its "*" separated items.
func (c Course) DescriptionItems() []string {
	return splitNonEmpty(c.Description, "*")
}

// NameParts splits the name on "(" so the qualifier can be displayed apart,
// e.g. "Excel (haladó)" -> ["Excel", "haladó)"].
func (c Course) NameParts() []string {
	return splitNonEmpty(c.Name, "(")
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// Listing is the representation of a course in course lists.
type Listing struct {
	Course
	PriceDisplay     string   `json:"price_display"`
	DescriptionItems []string `json:"description_items"`
}

func NewListing(c Course) Listing {
	return Listing{Course: c, PriceDisplay: c.PriceDisplay(), DescriptionItems: c.DescriptionItems()}
}

// Page is one page of a course list.
type Page struct {
	Courses    []Listing       `json:"courses"`
	Pagination core.PageWindow `json:"pagination"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name             string `json:"name" validate:"required,notblank,max=250"`
	Price            int    `json:"price" validate:"gte=0"`
	Description      string `json:"description" validate:"required,notblank"`
	Duration         string `json:"duration" validate:"max=150"`
	ExtraInfo        string `json:"extra_info"`
	ForPensioners    *bool  `json:"for_pensioners"`
	ForNonPensioners *bool  `json:"for_non_pensioners"`
	Active           *bool  `json:"active"`
	Slug             string `json:"slug" validate:"max=255"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Duration = core.CleanString(nc.Duration)
	nc.Slug = core.CleanString(nc.Slug, true /* lower */)
	if nc.Slug == "" {
		nc.Slug = core.Slugify(nc.Name)
	}
	return validate.Struct(nc)
}

// Application is what a signed in user fills in to apply for a course.
// Names and email address are taken from the user.
type Application struct {
	Age         int    `json:"age" validate:"required,gt=0,lte=120"`
	Address     string `json:"address" validate:"max=250"`
	PhoneNumber string `json:"phone_number" validate:"max=20,hu_phone"`
	Experience  string `json:"experience" validate:"required,notblank,max=500"`
}

func (a *Application) Validate(validate *validator.Validate) error {
	a.Address = core.CleanString(a.Address)
	a.PhoneNumber = core.CleanString(a.PhoneNumber)
	a.Experience = core.CleanString(a.Experience)
	return validate.Struct(a)
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	Active           *bool
	ForPensioners    *bool
	ForNonPensioners *bool
}

// GetFilter selects a single course. The first non-zero field is used.
type GetFilter struct {
	ID   int
	Slug string
}

func boolOr(b *bool, dflt bool) bool {
	if b == nil {
		return dflt
	}
	return *b
}

func boolPtr(b bool) *bool { return &b }
