package validator

import (
	"playday/pkg/model"
	"playday/pkg/validation"
)

type UserValidator struct {
	validate *validation.Validator
}

func NewUserValidator() *UserValidator {
	return &UserValidator{validate: validation.New()}
}

// ValidateSignUp also requires the two password entries to match.
func (v *UserValidator) ValidateSignUp(req *model.SignUpRequest) error {
	err := v.validate.Struct(req)
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		err = validation.Append(err, "confirm_password", "passwords do not match")
	}
	return err
}

func (v *UserValidator) ValidateSignIn(req *model.SignInRequest) error {
	return v.validate.Struct(req)
}

func (v *UserValidator) ValidateFederated(req *model.FederatedSignInRequest) error {
	return v.validate.Struct(req)
}
