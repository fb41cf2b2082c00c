// Package validation checks decoded request bodies against their `validate`
// struct tags and reports failures as client-facing error entries.
//
// A field may carry a `msg` tag that replaces the translated default message
// for every rule on that field.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/devconnector/devconnector-go/internal/model"
)

// Error is returned by Struct when one or more fields fail validation.
type Error struct {
	Fields []model.ErrorDetail
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator is safe for concurrent use; build one at startup and share it.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New creates a Validator reporting JSON field names and English messages.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Struct validates s, which must be a struct or a pointer to one. It returns
// nil or an *Error with one entry per failing field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	typ := reflect.TypeOf(s)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	out := &Error{}
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true

		msg := fe.Translate(v.trans)
		if f, ok := typ.FieldByName(fe.StructField()); ok {
			if custom := f.Tag.Get("msg"); custom != "" {
				msg = custom
			}
		}

		out.Fields = append(out.Fields, model.ErrorDetail{
			Msg:      msg,
			Param:    fe.Field(),
			Location: "body",
		})
	}
	return out
}
