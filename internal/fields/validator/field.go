package validator

import (
	"playday/pkg/model"
	"playday/pkg/validation"
)

type FieldValidator struct {
	validate *validation.Validator
}

func NewFieldValidator() *FieldValidator {
	return &FieldValidator{validate: validation.New()}
}

func (v *FieldValidator) Validate(field *model.Field) error {
	return v.validate.Struct(field)
}

func (v *FieldValidator) ValidateUpdate(update *model.FieldUpdate) error {
	if update.Empty() {
		return validation.Append(nil, "body", "at least one field must be provided")
	}
	return v.validate.Struct(update)
}
