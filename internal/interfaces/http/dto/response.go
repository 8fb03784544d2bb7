// Package dto holds the JSON envelope shared by every endpoint and the
// mapping from domain error codes to HTTP statuses.
package dto

import (
	"github.com/google/uuid"
	"github.com/spares/backend/internal/domain/shared"
)

// Response is the envelope around every JSON body
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *PageMeta  `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one rejected field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PageMeta accompanies list responses
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func Ok(data any) Response {
	return Response{Success: true, Data: data}
}

// Paged wraps one page of a list together with its totals
func Paged(data any, total int64, page, pageSize int) Response {
	f := shared.Filter{Page: page, PageSize: pageSize}
	return Response{
		Success: true,
		Data:    data,
		Meta:    &PageMeta{Total: total, Page: page, PageSize: pageSize, TotalPages: f.TotalPages(total)},
	}
}

// Failure builds an error envelope; requestID may be empty
func Failure(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// InvalidRequest is a VALIDATION_ERROR failure listing the rejected fields
func InvalidRequest(message, requestID string, details []ValidationDetail) Response {
	resp := Failure(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// ListRequest binds the paging and ordering query parameters shared by list endpoints
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// Normalize applies the first page and the default page size
func (r *ListRequest) Normalize() {
	r.Page = max(r.Page, 1)
	if r.PageSize == 0 {
		r.PageSize = shared.DefaultPageSize
	}
}

// LedgerResponse is the body of every ledger action
type LedgerResponse struct {
	Message       string    `json:"message"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Inventory     any       `json:"inventory"`
}

// NotesRequest carries free text attached to a transaction
type NotesRequest struct {
	Notes string `json:"notes" binding:"max=10000"`
}
