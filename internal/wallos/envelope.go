package wallos

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"subbridge/internal/core"
)

// ackProbe covers both historical acknowledgement shapes: the legacy
// {"status":"Success"} envelope and the current {"success":true} one.
type ackProbe struct {
	Status       *string `json:"status"`
	Success      *bool   `json:"success"`
	Message      string  `json:"message"`
	ErrorMessage string  `json:"errorMessage"`
}

// decodeAck normalizes a write response into core.Ack. The operation
// counts as successful if either envelope convention signals success.
// A body that matches neither shape is a boundary violation and
// surfaces as a remote-validation error.
func decodeAck(body []byte) (core.Ack, error) {
	trimmed := bytes.TrimSpace(body)
	var probe ackProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return core.Ack{}, core.WrapErr(core.KindRemoteValidation, err,
			"unexpected acknowledgement shape: %s", snippet(trimmed))
	}
	if probe.Status == nil && probe.Success == nil {
		return core.Ack{}, core.Errorf(core.KindRemoteValidation,
			"acknowledgement carries neither status nor success field: %s", snippet(trimmed))
	}

	success := false
	if probe.Status != nil && strings.EqualFold(*probe.Status, "success") {
		success = true
	}
	if probe.Success != nil && *probe.Success {
		success = true
	}

	message := probe.ErrorMessage
	if message == "" {
		message = probe.Message
	}
	if message == "" && probe.Status != nil {
		message = *probe.Status
	}

	return core.Ack{
		Success: success,
		Message: message,
		Raw:     json.RawMessage(append([]byte(nil), trimmed...)),
	}, nil
}

// ackError turns a rejected acknowledgement into the uniform
// remote-validation error, passing the backend's message through.
func ackError(ack core.Ack, operation string) error {
	msg := ack.Message
	if msg == "" {
		msg = "operation rejected"
	}
	return core.Errorf(core.KindRemoteValidation, "%s: %s", operation, msg)
}

func snippet(body []byte) string {
	const max = 120
	s := string(body)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}

// The backend emits numbers and booleans inconsistently: ids arrive as
// JSON numbers or quoted strings, flags as 0/1, booleans, or "0"/"1".
// These types absorb all of it at the decode boundary.

type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	// Some endpoints serialize integral values as floats ("3.0").
	if i, err := strconv.Atoi(s); err == nil {
		*f = flexInt(i)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexInt(int(v))
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(b)), `"`))
	switch s {
	case "1", "true", "yes", "on":
		*f = true
	default:
		*f = false
	}
	return nil
}
