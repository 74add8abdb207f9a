package model

import "time"

type Field struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location    string    `json:"location" bson:"location" validate:"required,min=2,max=200"`
	HourlyPrice float64   `json:"hourly_price" bson:"hourly_price" validate:"required,gt=0,cents"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"max=1000"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	Version     int64     `json:"version" bson:"version"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// FieldUpdate is a partial edit; nil members keep the stored value.
type FieldUpdate struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
	HourlyPrice *float64 `json:"hourly_price,omitempty" validate:"omitempty,gt=0,cents"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Empty reports whether the update changes nothing.
func (u *FieldUpdate) Empty() bool {
	return u.Name == nil && u.Location == nil && u.HourlyPrice == nil && u.Description == nil && u.ImageURL == nil
}
