package middleware

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func OkResponse() StatusResponse {
	return StatusResponse{Status: "ok"}
}

//ErrResponse returns ErrorResponse with the error text (if err isn't nil)
func ErrResponse(message string, err error) ErrorResponse {
	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	return response
}
