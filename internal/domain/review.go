package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 0
	MaxRating = 10
)

type Review struct {
	ID        int64     `db:"id" json:"id"`
	PlaceID   int64     `db:"place_id" json:"placeId"`
	AuthorID  uuid.UUID `db:"author_id" json:"authorId"`
	Cost      int       `db:"cost" json:"cost"`
	Safety    int       `db:"safety" json:"safety"`
	Fun       int       `db:"fun" json:"fun"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	AuthorEmail string  `db:"author_email" json:"-"`
	AuthorName  *string `db:"author_name" json:"-"`
	AuthorImage *string `db:"author_image" json:"-"`

	Place *PlaceSummary `db:"-" json:"place,omitempty"`
}

// ReviewInput carries the caller-supplied part of a review. Ratings are
// pointers so a missing field is never mistaken for a zero rating.
type ReviewInput struct {
	Cost    *int   `json:"cost" validate:"required,min=0,max=10"`
	Safety  *int   `json:"safety" validate:"required,min=0,max=10"`
	Fun     *int   `json:"fun" validate:"required,min=0,max=10"`
	Comment string `json:"comment" validate:"max=5000"`
}

// Ratings returns the three ratings. Callers must validate the input first.
func (in ReviewInput) Ratings() (cost, safety, fun int) {
	return *in.Cost, *in.Safety, *in.Fun
}

type ReviewCreateInput struct {
	LocationID string
	ReviewInput
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Page struct {
	Offset int
	Limit  int
}
