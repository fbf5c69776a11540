package handlers

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	ierr "github.com/yourusername/invoice-ledger/errors"
)

var registerOnce sync.Once

// RegisterValidators teaches gin's validator to compare decimal fields, so
// tags such as gte=0 work on decimal.Decimal. It also makes money render as
// JSON numbers, which browser clients expect.
func RegisterValidators() {
	registerOnce.Do(func() {
		decimal.MarshalJSONWithoutQuotes = true
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		}
	})
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// invalidRequest turns a binding error into a validation error listing the
// failing fields.
func invalidRequest(err error) error {
	details := make(map[string]any)
	var validateErrs validator.ValidationErrors
	if ierr.As(err, &validateErrs) {
		for _, fe := range validateErrs {
			details[fe.Field()] = fe.Error()
		}
	}
	return ierr.WithError(err).
		WithHint("Invalid request body").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
