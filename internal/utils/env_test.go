package utils

import "testing"

func TestGetEnv(t *testing.T) {
	t.Setenv("MILESYNC_TEST_VAR", "from-env")
	if got := GetEnv("MILESYNC_TEST_VAR", "fallback", nil); got != "from-env" {
		t.Errorf("GetEnv = %q", got)
	}
	if got := GetEnv("MILESYNC_TEST_MISSING", "fallback", nil); got != "fallback" {
		t.Errorf("GetEnv missing = %q", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("MILESYNC_TEST_INT", "500")
	if got := GetEnvAsInt("MILESYNC_TEST_INT", 10, nil); got != 500 {
		t.Errorf("GetEnvAsInt = %d", got)
	}
	t.Setenv("MILESYNC_TEST_INT", "not-a-number")
	if got := GetEnvAsInt("MILESYNC_TEST_INT", 10, nil); got != 10 {
		t.Errorf("GetEnvAsInt unparsable = %d, want default", got)
	}
}
