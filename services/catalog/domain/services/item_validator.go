// Package services contains stateless domain services for the catalog
// bounded context. Each field constraint is a pure function; the record-level
// validators compose them and report every violation in one batch rather
// than failing on the first.
package services

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	domain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

const (
	minNameLength        = 2
	maxNameLength        = 100
	maxDescriptionLength = 2000
	maxSKULength         = 50
	maxPrice             = 1_000_000
	maxQuantity          = 1_000_000
)

// Length limits count characters, not bytes.
func validateName(s string) *domain.FieldError {
	if n := utf8.RuneCountInString(s); n < minNameLength || n > maxNameLength {
		return &domain.FieldError{
			Field:   "name",
			Message: fmt.Sprintf("Product name must be between %d and %d characters", minNameLength, maxNameLength),
			Value:   s,
		}
	}
	return nil
}

func validateDescription(s string) *domain.FieldError {
	if utf8.RuneCountInString(s) > maxDescriptionLength {
		return &domain.FieldError{
			Field:   "description",
			Message: fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLength),
			Value:   s,
		}
	}
	return nil
}

// validatePrice assumes normalization already clamped negatives to zero.
func validatePrice(v float64) *domain.FieldError {
	if v > maxPrice {
		return &domain.FieldError{
			Field:   "price",
			Message: fmt.Sprintf("Price cannot exceed %d", maxPrice),
			Value:   v,
		}
	}
	if v < 0 {
		return &domain.FieldError{
			Field:   "price",
			Message: "Price cannot be negative",
			Value:   v,
		}
	}
	return nil
}

func validateCategory(s string) *domain.FieldError {
	if !models.ValidCategory(s) {
		return &domain.FieldError{
			Field:   "category",
			Message: "Invalid category",
			Value:   s,
		}
	}
	return nil
}

func validateSKU(s string) *domain.FieldError {
	if utf8.RuneCountInString(s) > maxSKULength {
		return &domain.FieldError{
			Field:   "sku",
			Message: fmt.Sprintf("SKU cannot exceed %d characters", maxSKULength),
			Value:   s,
		}
	}
	return nil
}

func validateQuantity(v float64) *domain.FieldError {
	if v < 0 {
		return &domain.FieldError{
			Field:   "quantity",
			Message: "Quantity cannot be negative",
			Value:   v,
		}
	}
	if v > maxQuantity {
		return &domain.FieldError{
			Field:   "quantity",
			Message: fmt.Sprintf("Quantity cannot exceed %d", maxQuantity),
			Value:   v,
		}
	}
	return nil
}

func validateMetadata(m map[string]any) *domain.FieldError {
	if _, err := json.Marshal(m); err != nil {
		return &domain.FieldError{
			Field:   "metadata",
			Message: "Metadata must be valid JSON",
		}
	}
	return nil
}

// ValidateCreate checks a normalized create patch. Name and price are
// required; every other field is checked only when supplied. All violations
// are returned together as one ValidationError.
func ValidateCreate(p *models.Patch) error {
	var fields []domain.FieldError

	if p.Name == nil {
		fields = append(fields, domain.FieldError{Field: "name", Message: "Product name is required"})
	} else if fe := validateName(*p.Name); fe != nil {
		fields = append(fields, *fe)
	}

	if p.Price == nil {
		fields = append(fields, domain.FieldError{Field: "price", Message: "Price is required"})
	} else if fe := validatePrice(*p.Price); fe != nil {
		fields = append(fields, *fe)
	}

	fields = append(fields, validateOptional(p)...)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ValidateUpdate checks a normalized partial-update patch. Only supplied
// fields are re-validated.
func ValidateUpdate(p *models.Patch) error {
	var fields []domain.FieldError

	if p.Name != nil {
		if fe := validateName(*p.Name); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if p.Price != nil {
		if fe := validatePrice(*p.Price); fe != nil {
			fields = append(fields, *fe)
		}
	}

	fields = append(fields, validateOptional(p)...)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validateOptional(p *models.Patch) []domain.FieldError {
	var fields []domain.FieldError

	if p.Description != nil {
		if fe := validateDescription(*p.Description); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if p.Category != nil && *p.Category != "" {
		if fe := validateCategory(*p.Category); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if p.SKU != nil {
		if fe := validateSKU(*p.SKU); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if p.Quantity != nil {
		if fe := validateQuantity(*p.Quantity); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if p.Metadata != nil {
		if fe := validateMetadata(p.Metadata); fe != nil {
			fields = append(fields, *fe)
		}
	}
	return fields
}
