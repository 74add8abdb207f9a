package model

import "time"

// Rental is a paid time slot on a field. FieldName and Location are a
// snapshot taken when the rental was made; FieldID is the reference.
type Rental struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	FieldID     string    `json:"field_id" bson:"field_id"`
	FieldName   string    `json:"field_name" bson:"field_name"`
	Location    string    `json:"location" bson:"location"`
	RenterID    string    `json:"renter_id" bson:"renter_id"`
	RenterEmail string    `json:"renter_email" bson:"renter_email"`
	StartTime   time.Time `json:"start_time" bson:"start_time"`
	EndTime     time.Time `json:"end_time" bson:"end_time"`
	Hours       int       `json:"hours" bson:"hours"`
	HourlyPrice float64   `json:"hourly_price" bson:"hourly_price"`
	Price       float64   `json:"price" bson:"price"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type RentalRequest struct {
	FieldID   string    `json:"field_id" validate:"required,mongodb"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type RentalQuote struct {
	FieldID     string    `json:"field_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Hours       int       `json:"hours"`
	HourlyPrice float64   `json:"hourly_price"`
	Price       float64   `json:"price"`
}

// RentalLock is an advisory lock serializing rental creation on one field.
// Token identifies one acquisition so a holder only ever releases its own lock.
type RentalLock struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
