package wizard

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
	cardPattern   = regexp.MustCompile(`^[0-9]{16}$`)
	phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)
)

// Validator checks passenger and payment input. Field errors are keyed by JSON name.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	return NewValidatorWithClock(time.Now)
}

// NewValidatorWithClock pins "today" for date of birth checks
func NewValidatorWithClock(now func() time.Time) *Validator {
	v := &Validator{validate: validator.New(), now: now}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v.validate, "phone", func(fl validator.FieldLevel) bool {
		return isPhone(fl.Field().String())
	})
	mustRegister(v.validate, "dob", func(fl validator.FieldLevel) bool {
		return v.isBirthDate(fl.Field().String())
	})
	mustRegister(v.validate, "card_number", func(fl validator.FieldLevel) bool {
		return cardPattern.MatchString(NormalizeCardNumber(fl.Field().String()))
	})
	mustRegister(v.validate, "expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	mustRegister(v.validate, "cvv", func(fl validator.FieldLevel) bool {
		return cvvPattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// isPhone accepts at least ten digits once spaces, dashes, parentheses and a leading + are removed
func isPhone(raw string) bool {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "+")
	s = phoneStripper.Replace(s)
	return len(s) >= 10 && digitsOnly.MatchString(s)
}

func (v *Validator) isBirthDate(raw string) bool {
	dob, err := time.Parse(dateLayout, raw)
	if err != nil {
		return false
	}
	today := v.now().UTC().Truncate(24 * time.Hour)
	return !dob.After(today) && dob.Year() >= 1900
}

// fieldErrors turns validator output into {json_field: message}
func fieldErrors(err error) FieldErrors {
	out := FieldErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = messageFor(fe)
		}
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		parts := strings.Fields(fe.Param())
		if len(parts) == 2 {
			return fmt.Sprintf("is required for %s passengers", parts[1])
		}
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must contain at least 10 digits"
	case "dob":
		return "must be a valid date (YYYY-MM-DD) that is not in the future"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "card_number":
		return "must be 16 digits"
	case "expiry":
		return "must be in MM/YY format"
	case "cvv":
		return "must be 3 or 4 digits"
	default:
		return "is invalid"
	}
}
