package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Level: "info", Service: "ems", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	l := Get()
	l.Info().Msg("hello")

	if second.Len() != 0 {
		t.Fatalf("second Init should not take effect")
	}
	var event map[string]any
	if err := json.Unmarshal(first.Bytes(), &event); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if event["service"] != "ems" || event["message"] != "hello" {
		t.Errorf("unexpected event: %v", event)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Get()
}

func TestFromContext(t *testing.T) {
	Reset()
	defer Reset()

	if l := FromContext(context.Background()); l.GetLevel() != zerolog.Disabled {
		t.Errorf("expected disabled logger before Init, got %s", l.GetLevel())
	}

	var buf bytes.Buffer
	scoped := zerolog.New(&buf).With().Str("request_id", "abc").Logger()
	ctx := WithContext(context.Background(), scoped)

	l := FromContext(ctx)
	l.Info().Msg("scoped")
	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"abc"`)) {
		t.Errorf("expected request id in output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
