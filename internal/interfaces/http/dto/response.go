package dto

// Response is the envelope every endpoint answers with. Gate refusals set
// both Error and Data so clients see the failed checks.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	// Context holds facts about a domain failure, such as the id of the conflicting record
	Context map[string]any `json:"context,omitempty"`
}

// ValidationDetail names one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Paged is OK with pagination metadata
func Paged(data any, total int64, page, pageSize int) Response {
	meta := &Meta{Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Response{Success: true, Data: data, Meta: meta}
}

func Fail(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// Invalid is a VALIDATION_FAILED response listing the offending fields
func Invalid(message, requestID string, fields []ValidationDetail) Response {
	r := Fail(ErrCodeValidation, message, requestID)
	r.Error.Details = fields
	return r
}

// WithContext attaches domain error details to a failure
func (r Response) WithContext(ctx map[string]any) Response {
	if r.Error != nil && len(ctx) > 0 {
		info := *r.Error
		info.Context = ctx
		r.Error = &info
	}
	return r
}

// WithData attaches a payload to a failure
func (r Response) WithData(data any) Response {
	r.Data = data
	return r
}
