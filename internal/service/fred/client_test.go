package fred

import (
	"math"
	"testing"
	"time"

	applogger "MacroPulse/pkg/logger"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &Client{log: l}
}

func TestConvertSkipsBadDates(t *testing.T) {
	c := testClient(t)
	out := c.convert("CPIAUCSL", []fredObservation{
		{Date: "2023-01-01", Value: "299.170"},
		{Date: "not-a-date", Value: "300.840"},
		{Date: "2023-02-01", Value: "300.840"},
	}, false)

	if len(out) != 2 {
		t.Fatalf("want 2 observations, got %d", len(out))
	}
	if out[0].Value != 299.170 {
		t.Fatalf("value = %v", out[0].Value)
	}
	if !out[1].AsOfDate.Equal(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("as-of = %v", out[1].AsOfDate)
	}
	if out[0].Vintage != nil {
		t.Fatalf("plain series must not carry a vintage")
	}
}

func TestConvertMissingValueBecomesNaN(t *testing.T) {
	c := testClient(t)
	out := c.convert("PPIFIS", []fredObservation{
		{Date: "2023-01-01", Value: "."},
		{Date: "2023-02-01", Value: ""},
		{Date: "2023-03-01", Value: "garbage"},
	}, false)

	if len(out) != 3 {
		t.Fatalf("want 3 observations, got %d", len(out))
	}
	for i, o := range out {
		if !math.IsNaN(o.Value) {
			t.Fatalf("observation %d: want NaN, got %v", i, o.Value)
		}
	}
}

func TestConvertVintages(t *testing.T) {
	c := testClient(t)
	out := c.convert("A191RL1Q225SBEA", []fredObservation{
		{Date: "2023-01-01", RealtimeStart: "2023-04-27", Value: "1.1"},
		{Date: "2023-01-01", RealtimeStart: "bad", Value: "1.3"},
	}, true)

	if len(out) != 1 {
		t.Fatalf("want 1 observation, got %d", len(out))
	}
	if out[0].Vintage == nil || !out[0].Vintage.Equal(time.Date(2023, 4, 27, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("vintage = %v", out[0].Vintage)
	}
}
