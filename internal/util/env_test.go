package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{" true ", false, true},
		{"", true, true},
		{"", false, false},
		{"banana", true, true},
		{"banana", false, false},
	}
	for _, c := range cases {
		t.Setenv("GOALTRACK_TEST_BOOL", c.value)
		if got := ParseBoolEnv("GOALTRACK_TEST_BOOL", c.defaultValue); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.defaultValue, got, c.want)
		}
	}
}

func TestParseBoolEnvUnset(t *testing.T) {
	if got := ParseBoolEnv("GOALTRACK_TEST_BOOL_UNSET", true); got != true {
		t.Error("expected default true for unset variable")
	}
	if got := ParseBoolEnv("GOALTRACK_TEST_BOOL_UNSET", false); got != false {
		t.Error("expected default false for unset variable")
	}
}
