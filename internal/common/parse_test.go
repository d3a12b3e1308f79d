package common

import (
	"testing"
)

func TestParseUint64orHex(t *testing.T) {
	tests := []struct {
		name    string
		input   *string
		want    uint64
		wantErr bool
	}{
		{
			name:    "nil input",
			input:   nil,
			want:    0,
			wantErr: false,
		},
		{
			name:    "decimal string",
			input:   strPtr("12345"),
			want:    12345,
			wantErr: false,
		},
		{
			name:    "hex string with 0x prefix",
			input:   strPtr("0x1a2b"),
			want:    0x1a2b,
			wantErr: false,
		},
		{
			name:    "hex string with 0x prefix and uppercase",
			input:   strPtr("0xDEADBEEF"),
			want:    0xDEADBEEF,
			wantErr: false,
		},
		{
			name:    "invalid decimal string",
			input:   strPtr("12abc"),
			want:    0,
			wantErr: true,
		},
		{
			name:    "invalid hex string",
			input:   strPtr("0xGHIJK"),
			want:    0,
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   strPtr(""),
			want:    0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUint64orHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseUint64orHex() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseUint64orHex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}

func TestBytesToMB(t *testing.T) {
	if got := BytesToMB(3 * bytesInMB); got != 3 {
		t.Errorf("BytesToMB() = %v, want 3", got)
	}
	if got := BytesToMB(bytesInMB - 1); got != 0 {
		t.Errorf("BytesToMB() = %v, want 0", got)
	}
}

func TestFormatBlockNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input []uint64
		want  string
	}{
		{name: "empty", input: nil, want: ""},
		{name: "single", input: []uint64{10}, want: "10"},
		{name: "several", input: []uint64{10, 11, 12}, want: "10, 11, 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBlockNumbers(tt.input); got != tt.want {
				t.Errorf("FormatBlockNumbers() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToLowerWithTrim(t *testing.T) {
	if got := ToLowerWithTrim("  DeBuG \t"); got != "debug" {
		t.Errorf("ToLowerWithTrim() = %q, want %q", got, "debug")
	}
}
