package handler

import (
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Validator validates request payloads and translates violations into
// human-readable messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator creates a Validator with English translations and the custom
// username rule registered.
func NewValidator(logger *zerolog.Logger) *Validator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	translator, ok := uni.GetTranslator("en")
	if !ok {
		logger.Fatal().Msg("failed to get en translator")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		logger.Fatal().Err(err).Msg("failed to register validator translations")
	}

	if err := validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to register username validation")
	}

	if err := validate.RegisterTranslation(
		"username",
		translator,
		func(ut ut.Translator) error {
			return ut.Add("username", "{0} may only contain letters, digits, and underscores", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T("username", fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to register username translation")
	}

	return &Validator{
		validate:   validate,
		translator: translator,
	}
}

// Struct validates a payload and returns translated violation messages.
func (v *Validator) Struct(payload any) []string {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"invalid request payload"}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldError.Translate(v.translator))
	}

	return messages
}
