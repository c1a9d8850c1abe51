package version

import (
	"fmt"
	"strings"
	"testing"
)

func TestAccessorsMatchInfo(t *testing.T) {
	v, c, d := Info()

	if got := GetVersion(); got != v {
		t.Errorf("GetVersion() = %q, Info version = %q", got, v)
	}
	if got := GetCommit(); got != c {
		t.Errorf("GetCommit() = %q, Info commit = %q", got, c)
	}
	if got := GetDate(); got != d {
		t.Errorf("GetDate() = %q, Info date = %q", got, d)
	}
}

func TestDefaultsAreNotEmpty(t *testing.T) {
	// Без ldflags остаются значения по умолчанию, но не пустые строки.
	for name, got := range map[string]string{
		"version": GetVersion(),
		"commit":  GetCommit(),
		"date":    GetDate(),
	} {
		if got == "" {
			t.Errorf("%s must not be empty", name)
		}
	}
}

func TestString(t *testing.T) {
	want := fmt.Sprintf("version=%s commit=%s date=%s", GetVersion(), GetCommit(), GetDate())
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !strings.Contains(String(), "version=") {
		t.Error("String() must carry the version field")
	}
}
