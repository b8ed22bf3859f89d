package model

// Response is the REST envelope. Function endpoints do not use it.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    *ListMeta  `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ListMeta describes a list payload. Lists are bounded, so there is no paging.
type ListMeta struct {
	Count   int               `json:"count"`
	Limit   int               `json:"limit,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

func Failure(code string, message string) Response {
	return Response{Success: false, Error: &ErrorBody{Code: code, Message: message}}
}

// FunctionError is the flat failure body of the function endpoints.
type FunctionError struct {
	Error string `json:"error"`
}
