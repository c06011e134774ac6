package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Content types produced by Encode.
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Result is what a handler produces: either a structured Body or a verbatim
// Document with its own content type.
type Result struct {
	// Status is the HTTP status code.
	Status int

	// Body is the structured response. Ignored when Document is set.
	Body *Response

	// Document is a static payload written as-is.
	Document []byte

	// ContentType applies to Document.
	ContentType string

	// Action names the output command performed (e.g. "led/toggle").
	// Empty for read-only handlers.
	Action string
}

// JSON builds a structured result.
func JSON(status int, body *Response) Result {
	return Result{Status: status, Body: body}
}

// Document builds a verbatim result.
func Document(status int, contentType string, doc []byte) Result {
	return Result{Status: status, Document: doc, ContentType: contentType}
}

// Encode turns a Result into the bytes and content type to put on the wire.
//
// Returns:
//   - []byte: Payload
//   - string: Content type
//   - error: ErrEmptyResult if the result carries nothing, or a marshal error
func Encode(res Result) ([]byte, string, error) {
	if res.Document != nil {
		contentType := res.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(res.Document)
		}
		return res.Document, contentType, nil
	}
	if res.Body == nil {
		return nil, "", ErrEmptyResult
	}

	payload, err := json.Marshal(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding response: %w", err)
	}
	return payload, ContentTypeJSON, nil
}
