package interceptor

import "testing"

func TestServerMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "gateway timeout", ""},
		{"message field", `{"message":"user not found"}`, "user not found"},
		{"nested error", `{"error":{"message":"quota exceeded"}}`, "quota exceeded"},
		{"string error", `{"error":"nope"}`, ""},
		{"blank message", `{"message":"  "}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serverMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("serverMessage(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
