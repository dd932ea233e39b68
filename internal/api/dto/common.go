package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct tag validation and flattens failures into
// human-readable messages.
func Validate(payload any) []string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var details []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
		}
		return details
	}
	return []string{err.Error()}
}

// Envelope is the standard response body shape.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// PageMeta carries pagination facts alongside list payloads.
type PageMeta struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPageMeta derives pagination metadata from the listing parameters.
func NewPageMeta(page, limit int, total int64) PageMeta {
	if limit <= 0 {
		limit = 1
	}
	if page <= 0 {
		page = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return PageMeta{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1 && total > 0,
	}
}
