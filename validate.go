package nouvelles

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Field names in error messages
// come from the json tags so they match the wire format.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := 0; i < len(name); i++ {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// registerRequest is the JSON body of POST /api/register.
type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Pseudo   string `json:"pseudo" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// loginRequest is the JSON body of POST /api/login.
type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// storyInput holds the multipart fields of POST /api/stories. Content
// length is bounded in runes, checked separately from the tag rules since
// validator's max counts bytes for strings.
type storyInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

// checkStruct validates s and converts validator errors into a domain
// validation error carrying per-field messages.
func checkStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, FieldError{Field: e.Field(), Message: friendlyMessage(e)})
	}
	return Validation("Validation failed", fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	default:
		return "is invalid"
	}
}
