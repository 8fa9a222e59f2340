package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})
	return &buf
}

func TestRequestIDRoundTrip(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}

	id := NewRequestID()
	if len(id) != 36 {
		t.Fatalf("expected uuid string, got %q", id)
	}
	if got := RequestID(WithRequestID(context.Background(), id)); got != id {
		t.Fatalf("RequestID = %q, want %q", got, id)
	}
}

func TestTimeLogsOutcome(t *testing.T) {
	buf := captureLog(t)
	ctx := WithRequestID(context.Background(), "r-1")

	func() (err error) {
		defer Time(ctx, "ok.op")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, "bad.op")(&err)
		return errors.New("boom")
	}()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "req_id=r-1 op=ok.op ") || strings.Contains(lines[0], "err=") {
		t.Fatalf("unexpected success line %q", lines[0])
	}
	if !strings.Contains(lines[1], "op=bad.op") || !strings.HasSuffix(lines[1], "err=boom") {
		t.Fatalf("unexpected failure line %q", lines[1])
	}
}
