// Package client implements a ZeroMQ REQ client for environments served
// by the server package.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-zeromq/zmq4"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rlinterface/protocol"
	"github.com/samuelfneumann/rlinterface/space"
	ts "github.com/samuelfneumann/rlinterface/timestep"
)

// RemoteError is an error reported by the server in an error reply
type RemoteError struct {
	Command protocol.Command
	Message string
}

func (r *RemoteError) Error() string {
	return fmt.Sprintf("remote %v: %v", r.Command, r.Message)
}

// Client drives a remote environment. A Client is not safe for
// concurrent use, the underlying socket requires strictly alternating
// requests and replies.
type Client struct {
	sock     zmq4.Socket
	endpoint string
	step     ts.TimeStep
}

// Dial connects to the server at endpoint, e.g. tcp://localhost:5555
func Dial(ctx context.Context, endpoint string) (*Client, error) {
	sock := zmq4.NewReq(ctx)
	if err := sock.Dial(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dial: could not connect to %v: %w", endpoint,
			err)
	}
	return &Client{sock: sock, endpoint: endpoint}, nil
}

// Reset resets the remote environment and returns the first TimeStep
// of a new episode
func (c *Client) Reset() (ts.TimeStep, error) {
	var obs []float64
	if err := c.call(protocol.Reset, nil, &obs); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	c.step = ts.New(ts.First, 0, vector(obs), nil, 0)
	return c.step, nil
}

// Step takes one step in the remote environment with the given action.
// The action must encode to a JSON value the remote environment can
// decode into its action type.
func (c *Client) Step(action any) (ts.TimeStep, bool, error) {
	var result protocol.StepResult
	if err := c.call(protocol.Step, action, &result); err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	stepType := ts.Mid
	if result.Terminal {
		stepType = ts.Last
	}
	c.step = ts.New(stepType, result.Reward, vector(result.Observation),
		result.Info, c.step.Number+1)
	return c.step, result.Terminal, nil
}

// Actions returns a description of the remote action space
func (c *Client) Actions() (space.Description, error) {
	var desc space.Description
	if err := c.call(protocol.Actions, nil, &desc); err != nil {
		return space.Description{}, fmt.Errorf("actions: %w", err)
	}
	return desc, nil
}

// SampleAction samples an action from the remote action space. The
// action is returned in its encoded form, ready to be passed to Step.
func (c *Client) SampleAction() (any, error) {
	var action json.RawMessage
	if err := c.call(protocol.SampleAction, nil, &action); err != nil {
		return nil, fmt.Errorf("sampleAction: %w", err)
	}
	return action, nil
}

// ObsDimensions returns the shape of remote observations
func (c *Client) ObsDimensions() ([]int, error) {
	var shape []int
	if err := c.call(protocol.ObsDimensions, nil, &shape); err != nil {
		return nil, fmt.Errorf("obsDimensions: %w", err)
	}
	return shape, nil
}

// Shutdown asks the server to stop serving
func (c *Client) Shutdown() error {
	if err := c.call(protocol.Close, nil, nil); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close closes the connection to the server
func (c *Client) Close() error {
	return c.sock.Close()
}

// call sends a single request and decodes the result of its reply into
// result, which may be nil if the result is not needed
func (c *Client) call(cmd protocol.Command, payload any, result any) error {
	req, err := protocol.NewRequest(cmd, payload)
	if err != nil {
		return err
	}
	msg, err := req.Encode()
	if err != nil {
		return fmt.Errorf("could not encode request: %w", err)
	}

	if err := c.sock.Send(zmq4.NewMsg(msg)); err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	in, err := c.sock.Recv()
	if err != nil {
		return fmt.Errorf("could not receive reply: %w", err)
	}

	rep, err := protocol.DecodeReply(in.Bytes())
	if err != nil {
		return err
	}
	if rep.Status == protocol.StatusError {
		return &RemoteError{Command: cmd, Message: rep.Error}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rep.Result, result); err != nil {
		return fmt.Errorf("could not decode result: %w", err)
	}
	return nil
}

func (c *Client) String() string {
	return fmt.Sprintf("Client  |  Endpoint: %v", c.endpoint)
}

// vector converts a decoded observation list to a vector
func vector(obs []float64) *mat.VecDense {
	if len(obs) == 0 {
		return nil
	}
	return mat.NewVecDense(len(obs), obs)
}
