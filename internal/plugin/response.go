package plugin

import "net/http"

// Response is the answer handed back to the host. Build it with NewResponse.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// NewResponse creates a response, copying headers.
func NewResponse(statusCode int, headers map[string]string, body string) Response {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}

	return Response{
		StatusCode: statusCode,
		Headers:    h,
		Body:       body,
	}
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"} //nolint:gochecknoglobals

func jsonResponse(body []byte) Response {
	return NewResponse(http.StatusOK, jsonHeaders, string(body))
}

func textResponse(statusCode int, body string) Response {
	return NewResponse(statusCode, map[string]string{"Content-Type": "text/plain; charset=utf-8"}, body)
}
