package models

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
		ok   bool
	}{
		{"12.34", 1234, true},
		{"0.01", 1, true},
		{"10", 1000, true},
		{"0", 0, true},
		{"12.345", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		if c.ok && err != nil {
			t.Fatalf("ParseMoney(%q) unexpected error: %v", c.in, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("ParseMoney(%q) expected error", c.in)
			}
			continue
		}
		if got != c.want {
			t.Fatalf("ParseMoney(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if s := Money(1234).String(); s != "12.34" {
		t.Fatalf("String() = %q, want 12.34", s)
	}
	if s := Money(5).String(); s != "0.05" {
		t.Fatalf("String() = %q, want 0.05", s)
	}
	if s := Money(0).String(); s != "0.00" {
		t.Fatalf("String() = %q, want 0.00", s)
	}
}

func TestMoneyPercentHalfUp(t *testing.T) {
	// 10% of 10.00 => 1.00
	if got := Money(1000).Percent(10); got != 100 {
		t.Fatalf("Percent = %d, want 100", got)
	}
	// 15% of 0.99 => 14.85 分，四舍五入到 15
	if got := Money(99).Percent(15); got != 15 {
		t.Fatalf("Percent = %d, want 15", got)
	}
	// 10% of 0.05 => 0.5 分，四舍五入到 1
	if got := Money(5).Percent(10); got != 1 {
		t.Fatalf("Percent = %d, want 1", got)
	}
	// 10% of 0.04 => 0.4 分，舍去为 0
	if got := Money(4).Percent(10); got != 0 {
		t.Fatalf("Percent = %d, want 0", got)
	}
}

func TestMoneyClampTo(t *testing.T) {
	if got := Money(800).ClampTo(500); got != 500 {
		t.Fatalf("ClampTo = %d, want 500", got)
	}
	if got := Money(300).ClampTo(500); got != 300 {
		t.Fatalf("ClampTo = %d, want 300", got)
	}
}
