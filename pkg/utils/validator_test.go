package utils

import "testing"

func TestISODateValidation(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Date string `validate:"isodate"`
	}

	valid := []string{"2024-01-01", "2024-12-31", "1999-06-15"}
	for _, d := range valid {
		if err := v.Struct(payload{Date: d}); err != nil {
			t.Errorf("%q rejected: %v", d, err)
		}
	}

	invalid := []string{"2024-1-1", "2024-13-01", "2024-01-32", "01/15/2024", "2024-01-01T00:00:00Z", ""}
	for _, d := range invalid {
		if err := v.Struct(payload{Date: d}); err == nil {
			t.Errorf("%q accepted", d)
		}
	}
}

func TestMonthDayValidation(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Birthday string `validate:"monthday"`
	}

	valid := []string{"--01-01", "--12-31", "--02-29"}
	for _, d := range valid {
		if err := v.Struct(payload{Birthday: d}); err != nil {
			t.Errorf("%q rejected: %v", d, err)
		}
	}

	invalid := []string{"01-01", "--1-1", "--13-01", "--00-15", "2024-01-01", ""}
	for _, d := range invalid {
		if err := v.Struct(payload{Birthday: d}); err == nil {
			t.Errorf("%q accepted", d)
		}
	}
}
