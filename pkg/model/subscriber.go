package model

import "time"

type Subscriber struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,subscriber_email"`
}
