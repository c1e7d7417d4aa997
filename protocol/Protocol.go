// Package protocol defines the request/reply vocabulary used to drive
// an environment from another process.
//
// Messages are JSON objects. Every request carries a command and, for
// commands which need one, a payload:
//
//	{"command": "step", "payload": 2}
//
// Every reply carries a status, and either a result or an error
// message:
//
//	{"status": "ok", "result": {"observation": [0, 1], "reward": -1, ...}}
//	{"status": "error", "error": "step: invalid action 7"}
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Command is the name of a request
type Command string

// Commands understood by a server
const (
	Reset         Command = "reset"
	Step          Command = "step"
	Actions       Command = "actions"
	SampleAction  Command = "sample_action"
	ObsDimensions Command = "obs_dimensions"

	// Close asks the server to reply and then stop serving
	Close Command = "close"
)

// Commands returns all known commands
func Commands() []Command {
	return []Command{Reset, Step, Actions, SampleAction, ObsDimensions, Close}
}

// Valid returns whether c is a known command
func (c Command) Valid() bool {
	for _, known := range Commands() {
		if c == known {
			return true
		}
	}
	return false
}

// NeedsPayload returns whether requests with command c must carry a
// payload
func (c Command) NeedsPayload() bool {
	return c == Step
}

// Status is the outcome of a request
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

var (
	// ErrMalformed is returned when a message is not a valid JSON
	// object of the expected form
	ErrMalformed = errors.New("malformed message")

	// ErrUnknownCommand is returned when a request names an unknown
	// command
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingPayload is returned when a request for a command which
	// needs a payload has none
	ErrMissingPayload = errors.New("missing payload")

	// ErrUnencodable is reported when a request was applied to the
	// environment but its result could not be encoded, for example a
	// reward or observation holding a NaN or an infinity
	ErrUnencodable = errors.New("request applied but result not encodable")
)

// Request is a single command sent to a server
type Request struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is the response to a single Request
type Reply struct {
	Status Status          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StepResult is the result of a step request
type StepResult struct {
	Observation []float64 `json:"observation"`
	Reward      float64   `json:"reward"`
	Terminal    bool      `json:"terminal"`
	Info        any       `json:"info"`
}

// NewRequest returns a new Request with the given command and payload.
// A nil payload is omitted.
func NewRequest(c Command, payload any) (Request, error) {
	req := Request{Command: c}
	if payload == nil {
		return req, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("newRequest: could not encode "+
			"payload: %w", err)
	}
	req.Payload = raw
	return req, nil
}

// DecodeRequest decodes and validates a request message. Unknown
// commands and missing payloads are rejected.
func DecodeRequest(msg []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return Request{}, fmt.Errorf("decodeRequest: %w: %v", ErrMalformed,
			err)
	}
	if req.Command == "" {
		return Request{}, fmt.Errorf("decodeRequest: %w: no command",
			ErrMalformed)
	}
	if !req.Command.Valid() {
		return Request{}, fmt.Errorf("decodeRequest: %w %q",
			ErrUnknownCommand, req.Command)
	}
	if req.Command.NeedsPayload() && isNull(req.Payload) {
		return Request{}, fmt.Errorf("decodeRequest: %w for command %q",
			ErrMissingPayload, req.Command)
	}
	return req, nil
}

// Encode encodes the request as a message
func (r Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// OK returns a successful Reply carrying result
func OK(result any) (Reply, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Reply{}, fmt.Errorf("ok: could not encode result: %w", err)
	}
	return Reply{Status: StatusOK, Result: raw}, nil
}

// Fail returns an error Reply carrying the message of err
func Fail(err error) Reply {
	return Reply{Status: StatusError, Error: err.Error()}
}

// DecodeReply decodes a reply message
func DecodeReply(msg []byte) (Reply, error) {
	var rep Reply
	if err := json.Unmarshal(msg, &rep); err != nil {
		return Reply{}, fmt.Errorf("decodeReply: %w: %v", ErrMalformed, err)
	}
	if rep.Status != StatusOK && rep.Status != StatusError {
		return Reply{}, fmt.Errorf("decodeReply: %w: unknown status %q",
			ErrMalformed, rep.Status)
	}
	return rep, nil
}

// Encode encodes the reply as a message
func (r Reply) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// isNull returns whether a raw JSON value is absent or null
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
