package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"0", true},
		{"-0", true},
		{"0.5", true},
		{"-0.5", true},
		{"0.05", true},
		{"1", true},
		{"10", true},
		{"-10", true},
		{"1.5", true},
		{"1.50", true},
		{"1,50", true},
		{"-12,4", true},
		{"461.79", true},
		{"1000000", true},
		{"", false},
		{"-", false},
		{"01", false},
		{"-01", false},
		{"00", false},
		{"00.5", false},
		{"5.", false},
		{"5,", false},
		{".5", false},
		{"1000.005", false},
		{"1.999", false},
		{"1e3", false},
		{"1,000.00", false},
		{"1.000,00", false},
		{"+1", false},
		{" 1", false},
		{"1 ", false},
		{"abc", false},
		{"--1", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Valid(tt.input); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("1,2,3"); got != "1.2.3" {
		t.Errorf("Normalize() = %q, want %q", got, "1.2.3")
	}
	if got := Normalize("12.50"); got != "12.50" {
		t.Errorf("Normalize() = %q, want %q", got, "12.50")
	}
}

func TestAllValid(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		from   int
		want   bool
	}{
		{"empty slice", nil, 0, true},
		{"range past the end", []string{"token", "Alice"}, 2, true},
		{"all valid", []string{"token", "Alice", "10", "-10"}, 2, true},
		{"invalid first", []string{"token", "Alice", "x", "-10"}, 2, false},
		{"invalid last", []string{"token", "Alice", "10", "1.001"}, 2, false},
		{"invalid before range is ignored", []string{"token", "not money", "10"}, 2, true},
		{"empty entry is invalid", []string{"token", "Alice", "10", ""}, 2, false},
		{"negative start covers everything", []string{"x", "1"}, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllValid(tt.values, tt.from); got != tt.want {
				t.Errorf("AllValid(%v, %d) = %v, want %v", tt.values, tt.from, got, tt.want)
			}
		})
	}
}

func TestNegative(t *testing.T) {
	for input, want := range map[string]bool{"-1": true, "-0": true, "0": false, "12.5": false, "": false} {
		if got := Negative(input); got != want {
			t.Errorf("Negative(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("12,40")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !d.Equal(decimal.RequireFromString("12.4")) {
		t.Errorf("Parse() = %s, want 12.4", d)
	}

	if _, err := Parse("01"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Parse(\"01\") error = %v, want ErrInvalidAmount", err)
	}
}

func TestFixed(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0.00"},
		{"-0", "0.00"},
		{"20", "20.00"},
		{"-12.5", "-12.50"},
		{"0.125", "0.13"},
		{"-0.125", "-0.13"},
	}
	for _, tt := range tests {
		if got := Fixed(decimal.RequireFromString(tt.input)); got != tt.want {
			t.Errorf("Fixed(%s) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		minor  int64
	}{
		{"461.79", 46179},
		{"-12.45", -1245},
		{"-371.87", -37187},
		{"342.04", 34204},
		{"0.05", 5},
		{"-0.05", -5},
		{"-0.5", -50},
		{"0.00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d, err := Parse(tt.amount)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := ToMinor(d); got != tt.minor {
				t.Errorf("ToMinor(%s) = %d, want %d", tt.amount, got, tt.minor)
			}
			if got := FromMinor(tt.minor); got != Fixed(d) {
				t.Errorf("FromMinor(%d) = %q, want %q", tt.minor, got, Fixed(d))
			}
		})
	}
}
