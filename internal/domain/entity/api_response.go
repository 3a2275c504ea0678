package entity

import "time"

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Timestamp  time.Time `json:"timestamp"`
	Page       int       `json:"page,omitempty"`
	PerPage    int       `json:"per_page,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    &Meta{Timestamp: time.Now().UTC()},
	}
}

func NewListResponse(data interface{}, message string, page, perPage, total int) *APIResponse {
	return &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta: &Meta{
			Timestamp:  time.Now().UTC(),
			Page:       page,
			PerPage:    perPage,
			TotalCount: total,
		},
	}
}

func NewErrorResponse(code string, message string) *APIResponse {
	return &APIResponse{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &Meta{Timestamp: time.Now().UTC()},
	}
}
