package check

import (
	"testing"

	"github.com/kxue43/tech-blog/models"
)

func fakePost(slug, markdown string) *models.Post {
	return &models.Post{Slug: slug, Markdown: markdown}
}

func TestFingerprint_Deterministic(t *testing.T) {
	text := "waiting for downloads is harder than it looks"
	if fingerprint(text) != fingerprint(text) {
		t.Error("identical texts produced different fingerprints")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if fp := fingerprint(""); fp != 0 {
		t.Errorf("empty input should produce fingerprint 0, got %064b", fp)
	}
	if fp := fingerprint("  \t\n "); fp != 0 {
		t.Errorf("whitespace-only input should produce fingerprint 0, got %064b", fp)
	}
}

func TestFingerprint_SimilarTextsAreClose(t *testing.T) {
	a := fingerprint("the quick brown fox jumps over the lazy dog near the river bank today")
	b := fingerprint("the quick brown fox leaps over the lazy dog near the river bank today")
	if d := hammingDistance(a, b); d > 16 {
		t.Errorf("similar texts have distance %d", d)
	}
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		a, b uint64
		want int
	}{
		{0, 0, 0},
		{0xFF, 0xFF, 0},
		{0, 1, 1},
		{0, ^uint64(0), 64},
	}
	for _, tt := range tests {
		if got := hammingDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("hammingDistance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindDuplicates(t *testing.T) {
	body := "a long article body about browser automation and download events repeated verbatim"
	posts := []*models.Post{
		fakePost("original", body),
		fakePost("accidental-copy", body),
		fakePost("unrelated", "completely different content about static site generators and yaml front matter parsing"),
	}

	dups := findDuplicates(posts, 6)
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate pair, got %d: %+v", len(dups), dups)
	}
	if dups[0].PageA != "/original/" || dups[0].PageB != "/accidental-copy/" {
		t.Errorf("unexpected pair: %+v", dups[0])
	}
	if dups[0].Distance != 0 {
		t.Errorf("identical bodies should have distance 0, got %d", dups[0].Distance)
	}
}

func TestFindDuplicates_NoPairs(t *testing.T) {
	posts := []*models.Post{
		fakePost("a", "first story entirely about oauth token exchange and pkce verifiers in single page apps"),
		fakePost("b", "second piece covering chroma lexers goldmark rendering and cascadia selector matching instead"),
	}
	if dups := findDuplicates(posts, 3); len(dups) != 0 {
		t.Errorf("expected no duplicates, got %+v", dups)
	}
}
