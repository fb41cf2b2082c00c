package model

// ErrorDetail is a single entry of an error response. Param and Location are
// only set for request validation failures.
type ErrorDetail struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Errors []ErrorDetail `json:"errors"`
}
