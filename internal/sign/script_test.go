package sign

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sign.js")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScriptSigner_Sign(t *testing.T) {
	path := writeScript(t, `function get_sign(d) { return "sig_" + d; }`)
	s, err := NewScriptSigner(path)
	if err != nil {
		t.Fatalf("NewScriptSigner: %v", err)
	}

	got, err := s.Sign("abc123")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if got != "sig_abc123" {
		t.Errorf("Sign = %q, want %q", got, "sig_abc123")
	}
}

func TestScriptSigner_MissingEntryPoint(t *testing.T) {
	path := writeScript(t, `function other() { return 1; }`)
	if _, err := NewScriptSigner(path); err == nil {
		t.Error("expected error for script without get_sign")
	}
}

func TestScriptSigner_MissingFile(t *testing.T) {
	if _, err := NewScriptSigner(filepath.Join(t.TempDir(), "nope.js")); err == nil {
		t.Error("expected error for missing script file")
	}
}

func TestScriptSigner_ScriptThrows(t *testing.T) {
	path := writeScript(t, `function get_sign(d) { throw new Error("boom"); }`)
	s, err := NewScriptSigner(path)
	if err != nil {
		t.Fatalf("NewScriptSigner: %v", err)
	}

	if _, err := s.Sign("abc123"); !errors.Is(err, ErrSignFailed) {
		t.Errorf("expected ErrSignFailed, got %v", err)
	}
}
