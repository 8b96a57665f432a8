package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"18000", 1800000, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"0", 0, false},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok && (err != nil || got != tc.cents) {
			t.Fatalf("ParseAmountToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.cents)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseAmountToCents(%q) expected error", tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{`1500`, 150000},
		{`1500.5`, 150050},
		{`"1500.5"`, 150050}, // numeric string coerced
		{`"18.000"`, 1800},
		{`""`, 0},            // absent value falls back to zero
		{`"pollo"`, 0},       // malformed value falls back to zero
		{`null`, 0},
	}
	for i, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if m.Cents != tc.cents {
			t.Fatalf("case %d: got %d cents, want %d", i, m.Cents, tc.cents)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 10, 99, 100, 150050, 1800000} {
		b, err := json.Marshal(Money{Cents: cents})
		if err != nil {
			t.Fatal(err)
		}
		var back Money
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatal(err)
		}
		if back.Cents != cents {
			t.Fatalf("round trip %d -> %s -> %d", cents, b, back.Cents)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 500}
	b := Money{Cents: 800}
	if a.Add(b).Cents != 1300 {
		t.Fatal("Add")
	}
	if a.Sub(b).Cents != -300 {
		t.Fatal("Sub should allow negative results")
	}
}
