package main

import (
	"encoding/json"
	"testing"
)

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"object", `{"role":"user","content":"hola"}`, `{"role":"user","content":"hola"}`, false},
		{"array", `[1,2,3]`, `[1,2,3]`, false},
		{"number", `42`, `42`, false},
		{"double-encoded object", `"{\"role\":\"ai\"}"`, `{"role":"ai"}`, false},
		{"double-encoded array", `"[true,false]"`, `[true,false]`, false},
		{"string that is not JSON", `"hola que tal"`, "", true},
		{"empty", ``, "", true},
		{"whitespace", `   `, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeMessage(json.RawMessage(tc.in))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNumericDelta(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(1), 1, true},
		{float64(-5), -5, true},
		{float64(2.9), 2, true},  // truncated toward zero
		{float64(-2.9), -2, true},
		{"3", 3, true},
		{"2.5", 2, true},
		{"nope", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tc := range tests {
		got, ok := numericDelta(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("numericDelta(%v): got (%d,%v), want (%d,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
