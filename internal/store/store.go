package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrOutOfStock          = errors.New("out of stock")
	ErrStockExceeded       = errors.New("stock exceeded")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrDuplicateCategory   = errors.New("duplicate category")
	ErrCategoryInUse       = errors.New("category in use")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrEmptyCart           = errors.New("empty cart")
	ErrCheckoutNotStarted  = errors.New("checkout not started")
	ErrCorruptPayload      = errors.New("corrupt payload")
)

// Keys under which the terminal state is persisted.
const (
	KeyInventory    = "pos_inventory"
	KeyTransactions = "pos_transactions"
	KeyCategories   = "pos_categories"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports field-level problems with user input.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KV is the persistence boundary. Load reports found=false for a missing key.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored at key into T. A missing key yields
// fallback() with found=false. Undecodable payloads also yield fallback() and
// an error matching ErrCorruptPayload.
func LoadJSON[T any](ctx context.Context, kv KV, key string, fallback func() T) (T, bool, error) {
	raw, found, err := kv.Load(ctx, key)
	if err != nil {
		return fallback(), false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(raw) == 0 || string(raw) == "null" {
		return fallback(), false, nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback(), false, fmt.Errorf("decode %s: %w: %w", key, ErrCorruptPayload, err)
	}
	return value, true, nil
}

func SaveJSON(ctx context.Context, kv KV, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Save(ctx, key, payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
