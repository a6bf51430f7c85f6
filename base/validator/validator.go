package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	// TagDecimalGt0 accepts decimals strictly above zero
	TagDecimalGt0 = "decimal_gt0"
	// TagDecimalGte0 accepts decimals at or above zero
	TagDecimalGte0 = "decimal_gte0"
)

// New returns a validator that understands decimal.Decimal fields
func New() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation(TagDecimalGt0, func(fl validator.FieldLevel) bool {
		d, ok := parseDecimal(fl)
		return ok && d.IsPositive()
	})
	_ = v.RegisterValidation(TagDecimalGte0, func(fl validator.FieldLevel) bool {
		d, ok := parseDecimal(fl)
		return ok && !d.IsNegative()
	})
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func parseDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	if fl.Field().Kind() != reflect.String {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
