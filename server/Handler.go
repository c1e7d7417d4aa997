// Package server serves an environment to remote agents over a ZeroMQ
// REP socket, speaking the protocol package's JSON request/reply
// vocabulary.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rlinterface/environment"
	"github.com/samuelfneumann/rlinterface/protocol"
)

// Handler answers protocol requests against a single environment. A
// Handler never fails: every request, however malformed, produces a
// Reply.
type Handler struct {
	env    environment.Untyped
	logger *slog.Logger
	closed bool
}

// NewHandler returns a new Handler over env. If logger is nil,
// slog.Default() is used.
func NewHandler(env environment.Untyped, logger *slog.Logger) (*Handler,
	error) {
	if env == nil {
		return nil, fmt.Errorf("newHandler: environment is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{env: env, logger: logger}, nil
}

// Closed returns whether a close request has been handled
func (h *Handler) Closed() bool {
	return h.closed
}

// Handle decodes msg, dispatches it to the environment, and returns the
// reply. Requests which fail to decode never reach the environment.
// Panics raised by the model are recovered and reported as errors.
//
// Info values which cannot be encoded are sent as strings. If any other
// part of a result cannot be encoded, such as a non-finite reward, the
// error reply wraps protocol.ErrUnencodable: the request has still
// been applied to the environment.
func (h *Handler) Handle(msg []byte) (rep protocol.Reply) {
	req, err := protocol.DecodeRequest(msg)
	if err != nil {
		h.logger.Warn("rejected request", "error", err)
		return protocol.Fail(err)
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("recovered from panic", "command", req.Command,
				"panic", r)
			rep = protocol.Fail(fmt.Errorf("%v: panic: %v", req.Command, r))
		}
	}()

	result, err := h.dispatch(req)
	if err != nil {
		h.logger.Warn("request failed", "command", req.Command, "error", err)
		return protocol.Fail(err)
	}

	rep, err = protocol.OK(result)
	if err != nil {
		h.logger.Warn("could not encode result", "command", req.Command,
			"error", err)
		return protocol.Fail(fmt.Errorf("%v: %w: %v", req.Command,
			protocol.ErrUnencodable, err))
	}
	h.logger.Debug("handled request", "command", req.Command)
	return rep
}

func (h *Handler) dispatch(req protocol.Request) (any, error) {
	switch req.Command {
	case protocol.Reset:
		step, err := h.env.Reset()
		if err != nil {
			return nil, err
		}
		return observation(step.Observation), nil

	case protocol.Step:
		decode := environment.Decode(func(v any) error {
			return json.Unmarshal(req.Payload, v)
		})
		step, last, err := h.env.Step(decode)
		if err != nil {
			return nil, err
		}
		return protocol.StepResult{
			Observation: observation(step.Observation),
			Reward:      step.Reward,
			Terminal:    last,
			Info:        h.info(step.Info),
		}, nil

	case protocol.Actions:
		return h.env.ActionSpace(), nil

	case protocol.SampleAction:
		return h.env.SampleAction()

	case protocol.ObsDimensions:
		return h.env.ObservationShape()

	case protocol.Close:
		h.closed = true
		return nil, nil
	}

	return nil, fmt.Errorf("dispatch: %w %q", protocol.ErrUnknownCommand,
		req.Command)
}

// info returns i if it can be encoded, and its string form otherwise
func (h *Handler) info(i any) any {
	if _, err := json.Marshal(i); err != nil {
		h.logger.Warn("sending info as a string", "error", err)
		return fmt.Sprint(i)
	}
	return i
}

// observation returns the elements of v as a list
func observation(v *mat.VecDense) []float64 {
	if v == nil {
		return []float64{}
	}
	return mat.Col(nil, 0, v)
}
