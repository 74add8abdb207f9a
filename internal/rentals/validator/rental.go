package validator

import (
	"playday/pkg/model"
	"playday/pkg/validation"
)

type RentalValidator struct {
	validate *validation.Validator
}

func NewRentalValidator() *RentalValidator {
	return &RentalValidator{validate: validation.New()}
}

// Validate checks request shape only; slot length is priced and checked by
// the service so the response can carry the zero quote.
func (v *RentalValidator) Validate(req *model.RentalRequest) error {
	return v.validate.Struct(req)
}
