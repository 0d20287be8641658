package handler

// ErrorResponse is the JSON envelope for every API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
