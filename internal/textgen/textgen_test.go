// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// flakyGenerator fails the first N calls, then succeeds.
type flakyGenerator struct {
	failures  int
	callCount int
	response  string
}

func (f *flakyGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.callCount++
	if f.callCount <= f.failures {
		return "", fmt.Errorf("transient error (call %d)", f.callCount)
	}
	return f.response, nil
}

func TestGenerateWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		maxRetries int
		wantErr    bool
		wantCalls  int
	}{
		{name: "immediate success", failures: 0, maxRetries: 3, wantCalls: 1},
		{name: "succeeds after two failures", failures: 2, maxRetries: 3, wantCalls: 3},
		{name: "exhausts retries", failures: 10, maxRetries: 2, wantErr: true, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &flakyGenerator{failures: tt.failures, response: "ok"}
			text, err := GenerateWithRetry(context.Background(), gen, "prompt", tt.maxRetries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && text != "ok" {
				t.Errorf("text = %q, want %q", text, "ok")
			}
			if gen.callCount != tt.wantCalls {
				t.Errorf("calls = %d, want %d", gen.callCount, tt.wantCalls)
			}
			if tt.wantErr && !IsGenerationError(err) {
				t.Errorf("exhausted retries should yield a GenerationError, got %v", err)
			}
		})
	}
}

func TestGenerateWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &flakyGenerator{failures: 10}
	_, err := GenerateWithRetry(ctx, gen, "prompt", 5)
	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
	if gen.callCount > 1 {
		t.Errorf("generator called %d times after cancellation, want at most 1", gen.callCount)
	}
}

func TestScanJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "bare object", text: `{"a":1}`, want: `{"a":1}`},
		{name: "bare array", text: `[1,2,3]`, want: `[1,2,3]`},
		{name: "prose around object", text: "Here you go:\n{\"a\":1}\nHope that helps!", want: `{"a":1}`},
		{name: "markdown fence", text: "```json\n{\"concepts\":[]}\n```", want: `{"concepts":[]}`},
		{name: "nested braces", text: `result: {"a":{"b":[1,{"c":2}]}} trailing`, want: `{"a":{"b":[1,{"c":2}]}}`},
		{name: "braces inside strings", text: `{"a":"closing } brace"}`, want: `{"a":"closing } brace"}`},
		{name: "escaped quotes", text: `{"a":"quote \" and } brace"}`, want: `{"a":"quote \" and } brace"}`},
		{name: "no json", text: "nothing to see here", wantErr: true},
		{name: "unbalanced", text: `{"a":1`, wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ScanJSON(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(raw) != tt.want {
				t.Errorf("ScanJSON = %q, want %q", raw, tt.want)
			}
		})
	}
}

func TestDecodeInto(t *testing.T) {
	var payload struct {
		Concepts []struct {
			Name string `json:"name"`
		} `json:"concepts"`
	}

	err := DecodeInto("Sure! ```json\n{\"concepts\":[{\"name\":\"QuickSort\"}]}\n```", &payload)
	if err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if len(payload.Concepts) != 1 || payload.Concepts[0].Name != "QuickSort" {
		t.Errorf("payload = %+v", payload)
	}

	err = DecodeInto("no json at all", &payload)
	if !IsGenerationError(err) {
		t.Errorf("want GenerationError, got %v", err)
	}
}
