package validator

import (
	"playday/pkg/model"
	"playday/pkg/validation"
)

type GameValidator struct {
	validate *validation.Validator
}

func NewGameValidator() *GameValidator {
	return &GameValidator{validate: validation.New()}
}

func (v *GameValidator) Validate(req *model.GameRequest) error {
	return v.validate.Struct(req)
}
