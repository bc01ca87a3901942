package validator

import (
	"github.com/go-playground/validator/v10"

	"comanda/pkg/logger"
	"comanda/pkg/model"
	"comanda/pkg/validation"
)

var customerMessages = map[string]string{
	validation.TagCPF: "cpf must be a valid CPF (11 digits with matching check digits)",
	"e164":            "phone must be in international format, e.g. +5511987654321",
}

type CustomerValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCustomerValidator(log *logger.Logger) *CustomerValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build customer validator", "error", err)
	}

	log.Info("Customer validator initialized successfully")

	return &CustomerValidator{
		validate: v,
		logger:   log,
	}
}

func (v *CustomerValidator) Validate(c *model.Customer) error {
	if err := v.validate.Struct(c); err != nil {
		return validation.Translate(err, customerMessages)
	}
	return nil
}

func (v *CustomerValidator) ValidateUpdate(u *model.CustomerUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		return validation.Translate(err, customerMessages)
	}
	return nil
}
