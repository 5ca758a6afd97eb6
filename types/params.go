package types

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// CombineParams is the request body for triggering a combine job over HTTP.
// Zero values fall back to the server configuration.
type CombineParams struct {
	OutputName       string  `json:"output_name" validate:"omitempty,max=255"`
	RemoveWatermarks bool    `json:"remove_watermarks"`
	Strategy         string  `json:"strategy" validate:"omitempty,oneof=fixed_fraction pixel_domain"`
	CropFraction     float64 `json:"crop_fraction" validate:"omitempty,gt=0,lt=1"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *CombineParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: http.StatusUnprocessableEntity,
		Errors: errors,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}
