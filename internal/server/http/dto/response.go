package dto

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps payload into a successful envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKMessage wraps payload and a human-readable message.
func OKMessage(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Error builds a failure envelope.
func Error(message string) Response {
	return Response{Success: false, Message: message}
}
