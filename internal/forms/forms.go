// Package forms validates operator input before it is sent to the admin API.
// Each form carries its rules in validate tags and the message shown to the
// operator in msg tags.
package forms

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Login struct {
	Email    string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Password string `json:"password" validate:"min=6" msg:"Password must be at least 6 characters"`
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
}

type OTP struct {
	OTP string `json:"otp" validate:"len=4,numeric" msg:"OTP must be exactly 4 digits"`
}

type ResetPassword struct {
	Email           string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	OTP             string `json:"otp" validate:"len=4,numeric" msg:"OTP must be exactly 4 digits"`
	Password        string `json:"password" validate:"min=6" msg:"Password must be at least 6 characters"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password" msg:"Passwords don't match"`
}

type Category struct {
	Name        string `json:"name" validate:"required,min=2,max=60" msg:"Category name must be between 2 and 60 characters"`
	Description string `json:"description" validate:"max=500" msg:"Description must be at most 500 characters"`
	Icon        string `json:"icon" validate:"required" msg:"Icon is required"`
}

// CategoryUpdate allows every field to be left unchanged.
type CategoryUpdate struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=60" msg:"Category name must be between 2 and 60 characters"`
	Description string `json:"description" validate:"max=500" msg:"Description must be at most 500 characters"`
}

type Location struct {
	Name  string  `json:"name" validate:"required" msg:"Location name is required"`
	State string  `json:"state" validate:"required" msg:"State is required"`
	Lat   float64 `json:"lat" validate:"gte=-90,lte=90" msg:"Latitude must be between -90 and 90"`
	Lng   float64 `json:"lng" validate:"gte=-180,lte=180" msg:"Longitude must be between -180 and 180"`
}

type Job struct {
	Title       string    `json:"title" validate:"required,min=3" msg:"Title must be at least 3 characters"`
	Category    []string  `json:"category" validate:"min=1,dive,required" msg:"Select at least one category"`
	Description string    `json:"description" validate:"required" msg:"Description is required"`
	Location    string    `json:"location" validate:"required" msg:"Location is required"`
	Address     string    `json:"address" validate:"required" msg:"Address is required"`
	Budget      float64   `json:"budget" validate:"gt=0" msg:"Budget must be greater than 0"`
	Date        time.Time `json:"date" validate:"required" msg:"Date is required"`
}

// FieldError is one rejected field, named by its JSON key.
type FieldError struct {
	Field   string
	Message string
}

// Errors lists every rejected field of a form in declaration order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message for field, or "".
func (e Errors) Message(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks form, a pointer to or value of one of the form types,
// and returns Errors when any field is rejected.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(Errors, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		// dive errors name the element, report the slice field once
		name := strings.SplitN(fe.StructField(), "[", 2)[0]
		field := strings.SplitN(fe.Field(), "[", 2)[0]
		if seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, FieldError{Field: field, Message: message(t, name, fe)})
	}
	return out
}

func message(t reflect.Type, name string, fe validator.FieldError) string {
	if sf, ok := t.FieldByName(name); ok {
		if msg := sf.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fe.Field() + " failed " + fe.Tag() + " validation"
}
