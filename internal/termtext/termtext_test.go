package termtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"color", "\x1b[31mred\x1b[0m", "red"},
		{"multiple SGR", "\x1b[1;31;42mfancy\x1b[0m", "fancy"},
		{"spinner erase", "\x1b[?25l\x1b[2K\x1b[1G[{\"Method\": \"CNN\"}]\x1b[?25h", `[{"Method": "CNN"}]`},
		{"OSC with BEL", "\x1b]0;title\x07text", "text"},
		{"OSC with ST", "\x1b]0;title\x1b\\text", "text"},
		{"charset", "\x1b(Bhello", "hello"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripANSI(tt.input))
		})
	}
}

func TestValidateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid ASCII", "hello", "hello"},
		{"valid UTF-8", "café", "café"},
		{"invalid byte", "hello\x80world", "hello�world"},
		{"invalid continuation", "hello\xc3world", "hello�world"},
		{"multiple invalid", "\x80\x81ok", "��ok"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateUTF8(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Accuracy, F1 score", Clean("Accuracy,\n\tF1   score "))
	assert.Equal(t, "red", Clean("\x1b[31mred\x1b[0m"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		maxWidth int
	}{
		{"fits", "abc", "abc", 5},
		{"exact", "abcde", "abcde", 5},
		{"cut", "abcdefgh", "abcd…", 5},
		{"one column", "abcdef", "a", 1},
		{"zero", "abcdef", "", 0},
		{"CJK", "你好世界", "你…", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.maxWidth))
		})
	}
}

func TestMiddleTruncate_ASCII(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		maxWidth int
	}{
		{"fits exactly", "abcde", "abcde", 5},
		{"fits with room", "abc", "abc", 10},
		{"needs truncation", "abcdefghij", "abc…hij", 7},
		{"max 3", "abcdef", "a…f", 3},
		{"max 2", "abcdef", "ab", 2},
		{"max 0", "abcdef", "", 0},
		{"empty string", "", "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MiddleTruncate(tt.input, tt.maxWidth))
		})
	}
}

func TestMiddleTruncate_CJK(t *testing.T) {
	// head budget (7-1+1)/2 = 3 columns fits one 2-column rune; tail likewise.
	assert.Equal(t, "你…界", MiddleTruncate("你好世界", 7))
	assert.Equal(t, "你好", MiddleTruncate("你好", 4))
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 5, Width("hello"))
	assert.Equal(t, 4, Width("你好"))
}
