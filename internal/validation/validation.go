package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"posdemo/backend/internal/domain"
	"posdemo/backend/internal/store"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Decimals are validated through their float value so the stock
	// numeric tags (gt, gte, lte) apply to them.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// NormalizeItemDraft trims free-text fields in place.
func NormalizeItemDraft(draft *domain.ItemDraft) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Category = strings.TrimSpace(draft.Category)
}

// ItemDraft normalizes and validates draft, returning a *store.ValidationError
// listing every failed field.
func ItemDraft(draft *domain.ItemDraft) error {
	NormalizeItemDraft(draft)
	return Struct(draft)
}

func Struct(data any) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	verr := &store.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, store.FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return verr
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
