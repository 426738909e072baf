package logging

import (
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

// RegisterValidations installs the "logsize" and "logretention" tags on v so
// that structs embedding Config can be validated elsewhere.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("logsize", func(fl validator.FieldLevel) bool {
		_, err := parseSize(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("logretention", func(fl validator.FieldLevel) bool {
		_, err := parseRetention(fl.Field().String())
		return err == nil
	})
}

func validateConfig(cfg *Config) error {
	const op errors.Op = "logging.validateConfig"
	if cfg == nil {
		return errors.New(op).Msg(errMsgNilConfig)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails on an empty tag or nil func.
		_ = RegisterValidations(validate)
	})

	if err := validate.Struct(cfg); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	return nil
}
