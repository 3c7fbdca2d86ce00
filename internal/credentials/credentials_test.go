package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCookieFileBeforeSave(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cookies.txt"))
	if _, ok := s.CookieFile(); ok {
		t.Fatal("expected no cookie file before save")
	}
}

func TestSaveWritesNetscapeFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	s := NewStore(path)

	err := s.Save([]Cookie{
		{Domain: ".youtube.com", Name: "SID", Value: "abc123", Path: "/", Secure: true, ExpirationDate: 1900000000},
		{Domain: "music.example.com", Name: "session", Value: "xyz"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, ok := s.CookieFile()
	if !ok || got != path {
		t.Fatalf("cookie file not reported after save: %q %v", got, ok)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# Netscape HTTP Cookie File\n") {
		t.Fatalf("missing header:\n%s", content)
	}
	if !strings.Contains(content, ".youtube.com\tTRUE\t/\tTRUE\t1900000000\tSID\tabc123\n") {
		t.Fatalf("subdomain cookie line wrong:\n%s", content)
	}
	if !strings.Contains(content, "music.example.com\tFALSE\t/\tFALSE\t0\tsession\txyz\n") {
		t.Fatalf("host cookie line wrong:\n%s", content)
	}
}

func TestSaveReplacesPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.txt")
	s := NewStore(path)

	if err := s.Save([]Cookie{{Domain: "a.com", Name: "old", Value: "1"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save([]Cookie{{Domain: "a.com", Name: "new", Value: "2"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "old") {
		t.Fatal("stale cookies survived a re-upload")
	}
}
