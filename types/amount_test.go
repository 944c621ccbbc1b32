package types

import (
	"errors"
	"math"
	"testing"
)

func TestAmountAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		want    Amount
		wantErr error
	}{
		{"Simple", 100, 50, 150, nil},
		{"Zero", 0, 0, 0, nil},
		{"AtLimit", math.MaxUint64 - 1, 1, math.MaxUint64, nil},
		{"Overflow", math.MaxUint64, 1, 0, ErrAmountOverflow},
		{"OverflowBoth", math.MaxUint64, math.MaxUint64, 0, ErrAmountOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Add(tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountSub(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		want    Amount
		wantErr error
	}{
		{"Simple", 150, 50, 100, nil},
		{"ToZero", 50, 50, 0, nil},
		{"Underflow", 50, 51, 0, ErrAmountUnderflow},
		{"FromZero", 0, 1, 0, ErrAmountUnderflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Sub(tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountCovers(t *testing.T) {
	if !Amount(100).Covers(100) {
		t.Error("equal amounts should cover")
	}
	if !Amount(100).Covers(99) {
		t.Error("larger amount should cover")
	}
	if Amount(99).Covers(100) {
		t.Error("smaller amount should not cover")
	}
}

func TestSum(t *testing.T) {
	t.Run("Series", func(t *testing.T) {
		got, err := Sum(1, 2, 3, 4)
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		if got != 10 {
			t.Errorf("got %d, want 10", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		got, err := Sum()
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		if got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		if _, err := Sum(math.MaxUint64, 1); !errors.Is(err, ErrAmountOverflow) {
			t.Errorf("got %v, want ErrAmountOverflow", err)
		}
	})
}

func TestAmountFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   Amount
		decimals uint8
		want     string
	}{
		{"NoDecimals", 1234, 0, "1234"},
		{"WholeAndFraction", 1_500_000, 6, "1.500000"},
		{"SubUnit", 42, 6, "0.000042"},
		{"Zero", 0, 6, "0.000000"},
		{"ExactlyDecimals", 123456, 6, "0.123456"},
		{"TwoDecimals", 199, 2, "1.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.Format(tt.decimals); got != tt.want {
				t.Errorf("Format(%d): got %q, want %q", tt.decimals, got, tt.want)
			}
		})
	}
}

func TestMaxSupply(t *testing.T) {
	if MaxSupply != 100_000_000 {
		t.Errorf("max supply: got %d, want 100000000", MaxSupply)
	}
}
