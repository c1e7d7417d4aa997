package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressBar(&out, 8, 4)

	p.Increment()
	p.Display()
	if !strings.Contains(out.String(), "|██      | [25.00%") {
		t.Errorf("display: unexpected bar %q", out.String())
	}

	for i := 0; i < 10; i++ {
		p.Increment()
	}
	if p.Progress() != 1 {
		t.Errorf("progress: expected progress to saturate at 1, got %v",
			p.Progress())
	}

	p.Close()
	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("close: expected trailing newline")
	}
	n := out.Len()
	p.Close()
	p.Display()
	if out.Len() != n {
		t.Error("close: closed bar should not print")
	}
}
