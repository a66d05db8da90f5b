package fetch

import (
	"testing"
	"time"
)

func TestDomainMemory_SetGet(t *testing.T) {
	dm := NewDomainMemory(time.Hour)
	defer dm.Stop()

	if got := dm.Get("example.com"); got != "" {
		t.Errorf("empty memory returned %q", got)
	}

	dm.Set("example.com", "http")
	if got := dm.Get("example.com"); got != "http" {
		t.Errorf("Get = %q, want http", got)
	}

	dm.Delete("example.com")
	if got := dm.Get("example.com"); got != "" {
		t.Errorf("deleted entry returned %q", got)
	}
}

func TestDomainMemory_Expiry(t *testing.T) {
	dm := NewDomainMemory(10 * time.Millisecond)
	defer dm.Stop()

	dm.Set("example.com", "browser")
	if got := dm.Get("example.com"); got != "browser" {
		t.Fatalf("Get = %q, want browser", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := dm.Get("example.com"); got != "" {
		t.Errorf("expired entry returned %q", got)
	}
}

func TestDomainMemory_PerDomain(t *testing.T) {
	dm := NewDomainMemory(time.Hour)
	defer dm.Stop()

	dm.Set("a.example.com", "http")
	dm.Set("b.example.com", "browser")

	if got := dm.Get("a.example.com"); got != "http" {
		t.Errorf("a = %q", got)
	}
	if got := dm.Get("b.example.com"); got != "browser" {
		t.Errorf("b = %q", got)
	}
}
