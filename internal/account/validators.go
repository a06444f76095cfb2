package account

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the account rules to v as struct tags:
// `userid`, `personname`, `phone`, `emailaddr`, `companyname` and `nohangul`.
func RegisterValidators(v *validator.Validate) error {
	rules := map[string]func(string) string{
		"userid":      CheckUserID,
		"personname":  CheckName,
		"phone":       CheckPhone,
		"emailaddr":   CheckEmail,
		"companyname": CheckCompanyName,
		"nohangul": func(s string) string {
			if ContainsHangul(s) {
				return MsgHangulNotAllowed
			}
			return ""
		},
	}
	for tag, check := range rules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String()) == ""
		}); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

// Message returns the Korean message for a failed account tag on value.
func Message(tag, value string) string {
	switch tag {
	case "userid":
		return CheckUserID(value)
	case "personname":
		return CheckName(value)
	case "phone":
		return CheckPhone(value)
	case "emailaddr":
		return CheckEmail(value)
	case "companyname":
		return CheckCompanyName(value)
	case "nohangul":
		return MsgHangulNotAllowed
	}
	return ""
}
