package rekuest

import (
	"errors"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	ptBRTranslations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
)

var Validate = NewValidator()

var customMessages = map[string]map[string]string{
	"en": {
		"hhmm":    "{0} must be a wall-clock time in HH:MM format",
		"isodate": "{0} must be a date in YYYY-MM-DD format",
	},
	"pt_BR": {
		"hhmm":    "{0} deve ser um horário no formato HH:MM",
		"isodate": "{0} deve ser uma data no formato AAAA-MM-DD",
	},
}

func init() {
	entr, _ := UT.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(Validate, entr); err != nil {
		log.Warn().Err(err).Str("locale", "en").Msg("could not register translation")
	}

	ptbrtr, _ := UT.GetTranslator("pt_BR")
	if err := ptBRTranslations.RegisterDefaultTranslations(Validate, ptbrtr); err != nil {
		log.Warn().Err(err).Str("locale", "pt_BR").Msg("could not register translation")
	}

	translators := map[string]ut.Translator{
		"en":    entr,
		"pt_BR": ptbrtr,
	}

	for l, t := range translators {
		err := Validate.RegisterTranslation("caseinsensitiveoneof", t, func(ut ut.Translator) error {
			return nil
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("oneof", fe.Field(), fe.Param())
			return t
		})
		if err != nil {
			log.Warn().Err(err).Str("locale", l).Msg("could not register translation for function caseinsensitiveoneof")
		}

		for tag, text := range customMessages[l] {
			tag, text := tag, text
			err := Validate.RegisterTranslation(tag, t, func(ut ut.Translator) error {
				return ut.Add(tag, text, true)
			}, func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			})
			if err != nil {
				log.Warn().Err(err).Str("locale", l).Str("tag", tag).Msg("could not register custom translation")
			}
		}
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

func translate(utt ut.Translator, ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))

	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Namespace(),
			Violation: fe.Tag(),
			Message:   strings.TrimSpace(fe.Translate(utt)),
		})
	}

	return trans
}

// Violations validates s with the validator singleton and returns its violations, if any,
// translated with tr.
func Violations(tr ut.Translator, s any) []*ErrorResponse {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		panic(err)
	}
	return translate(tr, errs)
}

func validateVar(ctx *fiber.Ctx, s any, tag string) []*ErrorResponse {
	err := Validate.Var(s, tag)
	if err != nil {
		errs := err.(validator.ValidationErrors)
		return translate(TranslatorFromCtx(ctx), errs)
	}
	return nil
}

// ValidBody will get the body from *fiber.Ctx using fiber#BodyParser(),
// and validate it using the validator singleton. If the validation passed it will write the unmarshalled body
// to dest and return a nil, otherwise it will return an error. Notice that dest shall
// always be a pointer.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return apierr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	return ValidStruct(ctx, dest)
}

// ValidQuery is ValidBody for the query string.
func ValidQuery(ctx *fiber.Ctx, dest any) error {
	if err := ctx.QueryParser(dest); err != nil {
		return apierr.ErrInvalidReq.Msg("invalid query: %s", err)
	}

	return ValidStruct(ctx, dest)
}

func ValidStruct(ctx *fiber.Ctx, dest any) error {
	if violations := Violations(TranslatorFromCtx(ctx), dest); violations != nil {
		return apierr.NewInvalidViolations(violations)
	}

	return nil
}

func ValidVar(ctx *fiber.Ctx, field any, tag string) error {
	if err := validateVar(ctx, field, tag); err != nil {
		return apierr.NewInvalidViolations(err)
	}

	return nil
}
