package retry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxDetailLength bounds how much of an error body ends up in a Failure
const maxDetailLength = 512

// Request describes an HTTP call that can be re-issued verbatim
type Request struct {
	Method  string
	URL     string
	Body    any // JSON-encoded once, re-sent identically on every attempt
	Headers map[string]string
}

// DoRequest issues req until a 2xx response arrives or the budget runs out.
// The JSON body of the 2xx response is decoded into T.
func DoRequest[T any](ctx context.Context, client *http.Client, req Request, maxAttempts int, opts ...Option) Result[T] {
	if client == nil {
		client = http.DefaultClient
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return Err[T](KindInvalid, fmt.Sprintf("encode request body: %v", err))
		}
	}

	opts = append([]Option{WithName(method + " " + req.URL)}, opts...)

	return Do(ctx, maxAttempts, func(ctx context.Context) (T, error) {
		var zero T

		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
		if err != nil {
			return zero, Permanent(&Failure{Kind: KindInvalid, Detail: err.Error(), Err: err})
		}
		if bodyBytes != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		httpReq.Header.Set("Accept", "application/json")
		for key, value := range req.Headers {
			httpReq.Header.Set(key, value)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return zero, err
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return zero, readErr
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return zero, &Failure{
				Kind:       KindStatus,
				StatusCode: resp.StatusCode,
				Detail:     errorDetail(payload, resp.Status),
			}
		}

		var out T
		if len(payload) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(payload, &out); err != nil {
			return zero, Permanent(&Failure{Kind: KindDecode, Detail: err.Error(), Err: err})
		}
		return out, nil
	}, opts...)
}

// errorDetail pulls a message out of a JSON error body, falling back to the raw text
func errorDetail(payload []byte, status string) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		switch e := body.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return status
	}
	if len(text) > maxDetailLength {
		text = text[:maxDetailLength]
	}
	return text
}
