package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("EATERY_TEST_VAR=from-file\nEATERY_TEST_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EATERY_TEST_SET", "from-env")
	t.Setenv("EATERY_TEST_VAR", "")
	os.Unsetenv("EATERY_TEST_VAR")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("EATERY_TEST_VAR"); got != "from-file" {
		t.Errorf("EATERY_TEST_VAR = %q", got)
	}
	if got := os.Getenv("EATERY_TEST_SET"); got != "from-env" {
		t.Errorf("existing variable was overwritten: %q", got)
	}
}

func TestLoadEnv_MissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
}
