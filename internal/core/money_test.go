package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"92233720368547758.07", 9223372036854775807, true},
		{"92233720368547758.08", 0, false},
		{"92233720368547758.99", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseNonNegativeDecimalToCents(t *testing.T) {
	got, err := ParseNonNegativeDecimalToCents("0")
	if err != nil || got != 0 {
		t.Fatalf("zero: got %d err=%v", got, err)
	}
	if _, err := ParseNonNegativeDecimalToCents("-0.5"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative: expected ErrInvalidAmount, got %v", err)
	}
}

func TestMoneyJSON(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		out   string
	}{
		{`600`, 60000, `600`},
		{`45.5`, 4550, `45.5`},
		{`"12.34"`, 1234, `12.34`},
		{`0.015`, 2, `0.02`},
		{`-50`, -5000, `-50`},
		{`null`, 0, `0`},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.in, err)
		}
		if m.Cents != tc.cents {
			t.Errorf("%s: cents = %d, want %d", tc.in, m.Cents, tc.cents)
		}
		b, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.in, err)
		}
		if string(b) != tc.out {
			t.Errorf("%s: marshal = %s, want %s", tc.in, b, tc.out)
		}
	}

	for _, in := range []string{`"ten"`, `184467440737095516.17`, `1e20`, `"-1e20"`, `92233720368547758.08`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("%s: expected ErrInvalidAmount, got %v (cents=%d)", in, err, m.Cents)
		}
	}
}

func TestTransactionRejectsOverflowingAmount(t *testing.T) {
	var tx Transaction
	err := json.Unmarshal([]byte(`{"context_id":1,"amount":184467440737095516.17}`), &tx)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v (cents=%d)", err, tx.Amount.Cents)
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 10000}).String(); got != "100.00" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Money{Cents: -1999}).String(); got != "-19.99" {
		t.Fatalf("String() = %q", got)
	}
}
