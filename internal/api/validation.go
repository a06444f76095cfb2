package api

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fitreport/internal/account"
)

var registerValidatorsOnce sync.Once

// registerValidators installs the account rules on gin's validator and makes field
// errors report JSON names.
func registerValidators() error {
	var err error
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		err = account.RegisterValidators(v)
	})
	return err
}

var requiredMessages = map[string]string{
	"user_id":     account.MsgUserIDRequired,
	"password":    account.MsgPasswordRequired,
	"name":        account.MsgNameRequired,
	"position_id": account.MsgPositionRequired,
	"file":        msgUploadMissingFile,
	"filePath":    msgUploadMissingPath,
}

// validationMessage turns a binding error into a single user-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidRequest
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
	}
	value, _ := fe.Value().(string)
	if ptr, ok := fe.Value().(*string); ok && ptr != nil {
		value = *ptr
	}
	if msg := account.Message(fe.Tag(), value); msg != "" {
		return msg
	}
	return msgInvalidRequest + " (" + fe.Field() + ")"
}
