package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/research-hub/submission-service/internal/authz"
)

// Validator wraps go-playground validation with the portal's custom rules.
// The index-number rules close over the shared allowlist so that request
// validation and the submission gate agree on a single list.
type Validator struct {
	validate  *validator.Validate
	allowlist *authz.IndexAllowlist
}

func New(allowlist *authz.IndexAllowlist) *Validator {
	validate := validator.New()

	v := &Validator{
		validate:  validate,
		allowlist: allowlist,
	}
	v.registerRules()

	return v
}

func (v *Validator) registerRules() {
	// UGR followed by 10 digits.
	_ = v.validate.RegisterValidation("index_format", func(fl validator.FieldLevel) bool {
		return authz.ValidFormat(fl.Field().String())
	})

	// Membership in the authorized index-number list.
	_ = v.validate.RegisterValidation("index_authorized", func(fl validator.FieldLevel) bool {
		return v.allowlist.Contains(fl.Field().String())
	})
}

// Validate runs struct validation and returns structured field errors.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// Allowlist exposes the shared allowlist for callers that need a direct
// membership check (the submission gate).
func (v *Validator) Allowlist() *authz.IndexAllowlist {
	return v.allowlist
}

// ValidateSignIn applies the cross-field rule that either an email or an
// index number must be supplied alongside the password.
func (v *Validator) ValidateSignIn(req *SignInRequest) ValidationErrors {
	errs := v.Validate(req)
	if req.Email == "" && req.IndexNumber == "" {
		errs = append(errs, ValidationError{
			Field:   "email",
			Message: "either email or index number is required",
			Rule:    "required_without",
		})
	}
	return errs
}
