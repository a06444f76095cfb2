// Package account holds the field rules for staff accounts. The API validators and the
// console form share them so both sides reject the same input.
package account

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	UserIDMinLen      = 5
	UserIDMaxLen      = 10
	NameMaxLen        = 6
	CompanyNameMaxLen = 10
	PhoneMaxDigits    = 11
)

// Validation messages shown to the user.
const (
	MsgUserIDRequired    = "사용자 ID를 입력해주세요."
	MsgUserIDTooShort    = "5글자 이상으로 입력해주세요."
	MsgUserIDTooLong     = "10글자 이하로 입력해주세요."
	MsgUserIDCharset     = "영문, 숫자, 밑줄, 하이픈만 허용됩니다."
	MsgUserIDLetterDigit = "영문과 숫자를 함께 포함해야 합니다."
	MsgHangulNotAllowed  = "한글은 입력할 수 없습니다."
	MsgPasswordRequired  = "비밀번호를 입력해주세요."
	MsgNameRequired      = "이름을 입력해주세요."
	MsgNameTooLong       = "6글자 이하로 입력해주세요."
	MsgNameDigits        = "이름에는 숫자를 사용할 수 없습니다."
	MsgPositionRequired  = "직급을 선택해주세요."
	MsgPhoneRequired     = "연락처를 입력해주세요."
	MsgPhoneInvalid      = "연락처 형식이 올바르지 않습니다."
	MsgEmailRequired     = "이메일을 입력해주세요."
	MsgEmailInvalid      = "올바른 이메일 형식이 아닙니다."
	MsgCompanyRequired   = "소속을 입력해주세요."
	MsgCompanyTooLong    = "10글자 이하로 입력해주세요."
)

var (
	userIDCharset = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit      = regexp.MustCompile(`[0-9]`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^\d{3}(-\d{1,4}(-\d{1,4})?)?$`)
)

// ContainsHangul reports whether s holds Hangul syllables or jamo.
func ContainsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// CheckUserID returns the first rule userID breaks, or "" when it is acceptable.
func CheckUserID(userID string) string {
	switch n := utf8.RuneCountInString(userID); {
	case userID == "":
		return MsgUserIDRequired
	case ContainsHangul(userID):
		return MsgHangulNotAllowed
	case n < UserIDMinLen:
		return MsgUserIDTooShort
	case n > UserIDMaxLen:
		return MsgUserIDTooLong
	case !userIDCharset.MatchString(userID):
		return MsgUserIDCharset
	case !hasLetter.MatchString(userID) || !hasDigit.MatchString(userID):
		return MsgUserIDLetterDigit
	}
	return ""
}

// CheckName validates a display name.
func CheckName(name string) string {
	switch {
	case strings.TrimSpace(name) == "":
		return MsgNameRequired
	case hasDigit.MatchString(name):
		return MsgNameDigits
	case utf8.RuneCountInString(name) > NameMaxLen:
		return MsgNameTooLong
	}
	return ""
}

// CheckEmail validates an e-mail address.
func CheckEmail(email string) string {
	switch {
	case strings.TrimSpace(email) == "":
		return MsgEmailRequired
	case !emailPattern.MatchString(email):
		return MsgEmailInvalid
	}
	return ""
}

// CheckPhone validates a phone number already formatted by FormatPhone.
func CheckPhone(phone string) string {
	switch {
	case strings.TrimSpace(phone) == "":
		return MsgPhoneRequired
	case !phonePattern.MatchString(phone):
		return MsgPhoneInvalid
	}
	return ""
}

// CheckCompanyName validates the company (소속) name, which the form requires.
func CheckCompanyName(company string) string {
	switch {
	case strings.TrimSpace(company) == "":
		return MsgCompanyRequired
	case utf8.RuneCountInString(company) > CompanyNameMaxLen:
		return MsgCompanyTooLong
	}
	return ""
}

// FormatPhone strips non-digits, keeps at most 11 of them and hyphenates 3-4-4.
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > PhoneMaxDigits {
		digits = digits[:PhoneMaxDigits]
	}
	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 7:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	}
}
