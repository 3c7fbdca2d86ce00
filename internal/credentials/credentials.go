// Package credentials stores cookies uploaded by the companion
// browser extension and hands them to the engine as a cookie file.
package credentials

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Cookie is the shape the extension sends for each browser cookie.
type Cookie struct {
	Domain         string  `json:"domain"`
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Path           string  `json:"path"`
	Secure         bool    `json:"secure"`
	HTTPOnly       bool    `json:"httpOnly"`
	ExpirationDate float64 `json:"expirationDate"`
}

// Store persists the most recently uploaded cookies as a
// Netscape-format cookie file at a fixed path. It implements the
// engine's CookieSource.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save replaces the cookie file with the given cookies. The file is
// written to a temp sibling first so the engine never reads a
// half-written file.
func (s *Store) Save(cookies []Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for _, c := range cookies {
		includeSubdomains := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSubdomains = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, includeSubdomains, path, secure, int64(c.ExpirationDate), c.Name, c.Value)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// CookieFile returns the cookie file path when one has been saved.
func (s *Store) CookieFile() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		return "", false
	}
	return s.path, true
}
