package content

import (
	"errors"
	"testing"

	"github.com/kxue43/tech-blog/models"
)

func TestParseFrontMatter_Valid(t *testing.T) {
	source := `---
layout: post
title: "A Post"
date: 2026-01-15
categories: [go, testing]
---

Body text here.
`
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "A Post" {
		t.Errorf("title = %q, want %q", fm.Title, "A Post")
	}
	if fm.Layout != "post" {
		t.Errorf("layout = %q, want %q", fm.Layout, "post")
	}
	if fm.Date != "2026-01-15" {
		t.Errorf("date = %q, want %q", fm.Date, "2026-01-15")
	}
	if len(fm.Categories) != 2 || fm.Categories[0] != "go" {
		t.Errorf("categories = %v, want [go testing]", fm.Categories)
	}
	if body != "Body text here.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontMatter_DefaultLayout(t *testing.T) {
	fm, _, err := ParseFrontMatter("---\ntitle: No Layout\n---\nbody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Layout != "post" {
		t.Errorf("layout = %q, want default %q", fm.Layout, "post")
	}
}

func TestParseFrontMatter_CRLF(t *testing.T) {
	fm, body, err := ParseFrontMatter("---\r\ntitle: Windows\r\n---\r\nbody\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.Title != "Windows" {
		t.Errorf("title = %q", fm.Title)
	}
	if body != "body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontMatter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no opening delimiter", "title: x\n---\nbody"},
		{"no closing delimiter", "---\ntitle: x\nbody"},
		{"missing title", "---\nlayout: post\n---\nbody"},
		{"invalid yaml", "---\ntitle: [unclosed\n---\nbody"},
		{"unknown layout", "---\nlayout: no-such-layout\ntitle: x\n---\nbody"},
		{"empty source", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseFrontMatter(tt.source)
			if err == nil {
				t.Fatal("expected an error")
			}
			var be *models.BuildError
			if !errors.As(err, &be) {
				t.Fatalf("expected BuildError, got %T", err)
			}
			if be.Code != models.ErrCodeFrontMatter {
				t.Errorf("code = %q, want %q", be.Code, models.ErrCodeFrontMatter)
			}
		})
	}
}

func TestSplitFrontMatter_BodyLeadingNewlinesTrimmed(t *testing.T) {
	_, body, err := splitFrontMatter("---\ntitle: x\n---\n\n\nbody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "body" {
		t.Errorf("body = %q, want %q", body, "body")
	}
}
