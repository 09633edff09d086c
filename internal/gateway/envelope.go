package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTransport covers everything between the client and a well-formed
// envelope: unreachable endpoint, bad status, timeout, garbage body.
var ErrTransport = errors.New("transport failure")

// ApplicationError is a well-formed envelope with success=false.
type ApplicationError struct {
	Method  string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed", e.Method)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Message)
}

// Envelope is the uniform response of every backend method.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OK builds a success envelope around data. A nil data leaves Data empty.
func OK(data any) (Envelope, error) {
	if data == nil {
		return Envelope{Success: true}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode data: %w", err)
	}
	return Envelope{Success: true, Data: b}, nil
}

// Fail builds a failure envelope.
func Fail(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}

// ParseEnvelope decodes a raw response body. A body without a "success"
// field is a transport-level reply and is reported as ErrTransport.
func ParseEnvelope(body []byte) (Envelope, error) {
	var raw struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	if raw.Success == nil {
		msg := raw.Error
		if msg == "" {
			msg = "response has no success flag"
		}
		return Envelope{}, fmt.Errorf("%w: %s", ErrTransport, msg)
	}
	return Envelope{Success: *raw.Success, Data: raw.Data, Error: raw.Error}, nil
}

// HasData reports whether the envelope carries a non-null data field.
func (e Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// Decode checks env and unmarshals its data into out. out may be nil for
// methods whose data is unspecified; missing data then is not an error.
func Decode(method string, env Envelope, out any) error {
	if !env.Success {
		return &ApplicationError{Method: method, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	if !env.HasData() {
		return fmt.Errorf("%w: %s returned no data", ErrTransport, method)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", ErrTransport, method, err)
	}
	return nil
}
