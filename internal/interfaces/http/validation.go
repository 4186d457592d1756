package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Recursos-api/internal/domain"
)

// Validator valida los DTO de entrada y traduce el primer error al español.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator construye el validador con las traducciones en español.
func NewValidator() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Los mensajes nombran el campo tal como viaja en el JSON.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	spanish := es.New()
	uni := ut.New(spanish, spanish)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &Validator{validate: validate, translator: trans}, nil
}

// Struct valida in; los errores de validación se devuelven como ErrInvalidInput.
func (v *Validator) Struct(in any) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return domain.Invalid("%s", validationErrors[0].Translate(v.translator))
	}
	return domain.Invalid("%s", err.Error())
}

// bind parsea el cuerpo JSON en in y lo valida. Si falla, ya respondió al cliente
// y devuelve false.
func (v *Validator) bind(c *fiber.Ctx, in any) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(errorBody("INVALID_BODY", "cuerpo inválido"))
	}
	if err := v.Struct(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(errorBody("VALIDATION", err.Error()))
	}
	return true, nil
}
