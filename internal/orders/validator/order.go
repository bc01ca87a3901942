package validator

import (
	"github.com/go-playground/validator/v10"

	"comanda/pkg/logger"
	"comanda/pkg/model"
	"comanda/pkg/validation"
)

const tagOrderTotal = "order_total"

var orderMessages = map[string]string{
	validation.TagCPF: "customer_cpf must be a valid CPF (11 digits with matching check digits)",
	tagOrderTotal:     "total_cents must equal the sum of quantity x unit_price_cents over all items",
	"excludes":        "store_id must not contain ':'",
}

type OrderValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewOrderValidator(log *logger.Logger) *OrderValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build order validator", "error", err)
	}
	v.RegisterStructValidation(validateOrderTotal, model.Order{})

	log.Info("Order validator initialized successfully")

	return &OrderValidator{
		validate: v,
		logger:   log,
	}
}

func validateOrderTotal(sl validator.StructLevel) {
	o := sl.Current().Interface().(model.Order)
	if o.TotalCents != TotalCents(o.Items) {
		sl.ReportError(o.TotalCents, "total_cents", "TotalCents", tagOrderTotal, "")
	}
}

// TotalCents sums quantity times unit price over items.
func TotalCents(items []model.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.UnitPriceCents
	}
	return total
}

func (v *OrderValidator) Validate(o *model.Order) error {
	if err := v.validate.Struct(o); err != nil {
		return validation.Translate(err, orderMessages)
	}
	return nil
}

func (v *OrderValidator) ValidateUpdate(u *model.OrderUpdate) error {
	if err := v.validate.Struct(u); err != nil {
		return validation.Translate(err, orderMessages)
	}
	return nil
}
