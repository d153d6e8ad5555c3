// Package dto defines request/response shapes for the HTTP API.
package dto

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns a created resource's identifier.
type IDResponse struct {
	ID string `json:"id"`
}

// PageResponse wraps a paginated listing.
type PageResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
