package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetriableStatus(t *testing.T) {
	tests := []struct {
		code   int
		expect bool
	}{
		{0, true},
		{503, true},
		{504, true},
		{500, false},
		{502, false},
		{404, false},
		{429, false},
		{200, false},
	}

	for _, tt := range tests {
		if got := IsRetriableStatus(tt.code); got != tt.expect {
			t.Errorf("IsRetriableStatus(%d) = %v, want %v", tt.code, got, tt.expect)
		}
	}
}

func TestToastTypeForStatus(t *testing.T) {
	tests := []struct {
		code   int
		expect ToastType
	}{
		{0, ToastInfo},
		{302, ToastInfo},
		{400, ToastWarning},
		{404, ToastWarning},
		{499, ToastWarning},
		{500, ToastError},
		{504, ToastError},
	}

	for _, tt := range tests {
		if got := ToastTypeForStatus(tt.code); got != tt.expect {
			t.Errorf("ToastTypeForStatus(%d) = %v, want %v", tt.code, got, tt.expect)
		}
	}
}

func TestAsFailureThroughWrapping(t *testing.T) {
	f := &Failure{StatusCode: 504}
	err := fmt.Errorf("get users: %w", f)

	got, ok := AsFailure(err)
	if !ok || got != f {
		t.Fatalf("AsFailure did not unwrap failure: %v", err)
	}
	if StatusOf(err) != 504 {
		t.Errorf("StatusOf = %d, want 504", StatusOf(err))
	}
	if StatusOf(errors.New("boom")) != StatusConnectivity {
		t.Errorf("StatusOf(plain error) should be %d", StatusConnectivity)
	}
}

func TestFailureError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := &Failure{Connectivity: true, Cause: cause}
	if !errors.Is(f, cause) {
		t.Error("connectivity failure should unwrap to its cause")
	}
	if f.Error() != "connectivity failure: dial tcp: connection refused" {
		t.Errorf("unexpected message %q", f.Error())
	}

	f = &Failure{StatusCode: 404, Message: "user not found"}
	if f.Error() != "http 404: user not found" {
		t.Errorf("unexpected message %q", f.Error())
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"error":   LevelError,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		" info ":  LevelInfo,
		"Debug":   LevelDebug,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseLogLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(LevelError.Severity() < LevelWarn.Severity() &&
		LevelWarn.Severity() < LevelInfo.Severity() &&
		LevelInfo.Severity() < LevelDebug.Severity()) {
		t.Error("severity must order error > warn > info > debug")
	}
	if LogLevel("verbose").Valid() {
		t.Error("unknown level reported as valid")
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.FixedZone("CET", 3600))
	if got := FormatTimestamp(ts); got != "2024-05-01T11:30:00.123Z" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}
