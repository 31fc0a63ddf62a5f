package app

import (
	"testing"
	"time"
)

func TestEnvHelpersDefaults(t *testing.T) {
	if got := EnvString("LINGUA_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("EnvString=%q want fallback", got)
	}
	if got := EnvBool("LINGUA_TEST_UNSET", true); !got {
		t.Fatalf("EnvBool should default true")
	}
	if got := EnvInt("LINGUA_TEST_UNSET", 42); got != 42 {
		t.Fatalf("EnvInt=%d want 42", got)
	}
	if got := EnvDuration("LINGUA_TEST_UNSET", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration=%v want 1m", got)
	}
}

func TestEnvHelpersParse(t *testing.T) {
	t.Setenv("LINGUA_TEST_STR", "  hello  ")
	t.Setenv("LINGUA_TEST_BOOL", "false")
	t.Setenv("LINGUA_TEST_INT", "7")
	t.Setenv("LINGUA_TEST_DUR", "90s")

	if got := EnvString("LINGUA_TEST_STR", "x"); got != "hello" {
		t.Fatalf("EnvString=%q want hello", got)
	}
	if got := EnvBool("LINGUA_TEST_BOOL", true); got {
		t.Fatalf("EnvBool should parse false")
	}
	if got := EnvInt("LINGUA_TEST_INT", 1); got != 7 {
		t.Fatalf("EnvInt=%d want 7", got)
	}
	if got := EnvDuration("LINGUA_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("EnvDuration=%v want 90s", got)
	}
}

func TestEnvHelpersRejectGarbage(t *testing.T) {
	t.Setenv("LINGUA_TEST_INT", "-3")
	t.Setenv("LINGUA_TEST_DUR", "not-a-duration")
	t.Setenv("LINGUA_TEST_INT32", "notanumber")

	if got := EnvInt("LINGUA_TEST_INT", 5); got != 5 {
		t.Fatalf("negative int should fall back, got %d", got)
	}
	if got := EnvDuration("LINGUA_TEST_DUR", 2*time.Second); got != 2*time.Second {
		t.Fatalf("bad duration should fall back, got %v", got)
	}
	if got := EnvInt32("LINGUA_TEST_INT32", 9); got != 9 {
		t.Fatalf("bad int32 should fall back, got %d", got)
	}
}
