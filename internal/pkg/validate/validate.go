package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	identityRe = regexp.MustCompile(`^\d{17,19}$`)
	codeRe     = regexp.MustCompile(`^[A-Z0-9]{5}$`)
)

// v is the package-level singleton validator. Custom tags are registered in
// init() before the first call to Struct or Var.
var v = validator.New()

func init() {
	// snowflake: a Discord account id, 17 to 19 digits.
	_ = v.RegisterValidation("snowflake", func(fl validator.FieldLevel) bool {
		return identityRe.MatchString(fl.Field().String())
	})
	// vcode: an upper-cased one-time code.
	_ = v.RegisterValidation("vcode", func(fl validator.FieldLevel) bool {
		return codeRe.MatchString(fl.Field().String())
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// Identity reports whether s has the shape of an account id.
func Identity(s string) bool {
	return v.Var(s, "required,snowflake") == nil
}

// Code reports whether s has the shape of a one-time code. Callers upper-case first.
func Code(s string) bool {
	return v.Var(s, "required,vcode") == nil
}
