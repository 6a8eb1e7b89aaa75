package rekuest

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
)

var UT = ut.New(en.New(), pt_BR.New())

var supportedLanguages = []string{"en", "pt-BR", "pt"}

// TranslatorFromCtx picks the validation message translator from Accept-Language.
func TranslatorFromCtx(ctx *fiber.Ctx) ut.Translator {
	switch ctx.AcceptsLanguages(supportedLanguages...) {
	case "pt-BR", "pt":
		tr, _ := UT.GetTranslator("pt_BR")
		return tr
	default:
		tr, _ := UT.GetTranslator("en")
		return tr
	}
}
