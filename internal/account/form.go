package account

// NewUserForm is the input of the account creation form.
type NewUserForm struct {
	UserID        string
	Password      string
	Name          string
	PositionID    uint
	Phone         string
	EmailDisplay  string
	Address       string
	AddressDetail string
	CompanyName   string
}

// FieldErrors maps a JSON field name to its message.
type FieldErrors map[string]string

func (e FieldErrors) add(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// Validate checks every field of f and returns the failures keyed by field name.
// The phone number is normalised with FormatPhone first.
func (f *NewUserForm) Validate() FieldErrors {
	f.Phone = FormatPhone(f.Phone)

	errs := FieldErrors{}
	errs.add("user_id", CheckUserID(f.UserID))
	if f.Password == "" {
		errs.add("password", MsgPasswordRequired)
	}
	errs.add("name", CheckName(f.Name))
	if f.PositionID == 0 {
		errs.add("position_id", MsgPositionRequired)
	}
	errs.add("phone", CheckPhone(f.Phone))
	errs.add("email_display", CheckEmail(f.EmailDisplay))
	errs.add("company_name", CheckCompanyName(f.CompanyName))
	return errs
}
