package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  *string   `db:"full_name" json:"name,omitempty"`
	ImageURL  *string   `db:"user_image_url" json:"image,omitempty"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type VisitedPlace struct {
	ID            int64   `db:"id" json:"id"`
	City          string  `db:"city" json:"city"`
	Country       string  `db:"country" json:"country"`
	AdminDivision *string `db:"admin_division" json:"adminDivision,omitempty"`
}

type Profile struct {
	Name          *string        `json:"name"`
	Image         *string        `json:"image"`
	Bio           *string        `json:"bio"`
	VisitedPlaces []VisitedPlace `json:"visitedPlaces"`
}
