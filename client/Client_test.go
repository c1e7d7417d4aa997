package client

import (
	"context"
	"testing"
	"time"

	"github.com/samuelfneumann/rlinterface/protocol"
)

func TestRemoteError(t *testing.T) {
	err := &RemoteError{Command: protocol.Step, Message: "invalid action 7"}
	if got := err.Error(); got != "remote step: invalid action 7" {
		t.Errorf("error: unexpected message %q", got)
	}
}

func TestVector(t *testing.T) {
	if v := vector(nil); v != nil {
		t.Errorf("vector: expected nil vector for empty observation, got %v",
			v)
	}
	v := vector([]float64{1, 2, 3})
	if v.Len() != 3 || v.AtVec(2) != 3 {
		t.Errorf("vector: unexpected vector %v", v)
	}
}

func TestDialInvalidEndpoint(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := Dial(ctx, "not-an-endpoint"); err == nil {
		t.Error("dial: expected error for invalid endpoint")
	}
}
