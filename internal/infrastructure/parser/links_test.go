package parser

import (
	"net/url"
	"reflect"
	"testing"
)

func TestDiscoverLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	  <a href="/about">About</a>
	  <a href="team#people">Team</a>
	  <a href="team">Team again</a>
	  <a href="https://other.org/x">External</a>
	  <a href="mailto:help@example.com">Mail</a>
	  <a href="javascript:void(0)">JS</a>
	  <a href="   ">Blank</a>
	  <a>No href</a>
	</body></html>`

	got, err := DiscoverLinks([]byte(html), "https://example.com/company/")
	if err != nil {
		t.Fatalf("DiscoverLinks returned error: %v", err)
	}

	want := []string{
		"https://example.com/about",
		"https://example.com/company/team",
		"https://other.org/x",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links:\n got %v\nwant %v", got, want)
	}
}

func TestDiscoverLinksInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := DiscoverLinks([]byte(`<a href="/x">x</a>`), "://bad"); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://example.com":            "https://example.com/",
		"https://example.com/#top":       "https://example.com/",
		"https://example.com/docs?q=1#a": "https://example.com/docs?q=1",
		"https://example.com/docs/":      "https://example.com/docs/",
	}
	for in, want := range cases {
		u, err := url.Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got := CanonicalURL(u); got != want {
			t.Fatalf("CanonicalURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscoverLinksCanonicalisesRoot(t *testing.T) {
	t.Parallel()

	got, err := DiscoverLinks([]byte(`<a href="https://example.com">abs</a><a href="/">root</a>`), "https://example.com/docs")
	if err != nil {
		t.Fatalf("DiscoverLinks returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"https://example.com/"}) {
		t.Fatalf("unexpected links: %v", got)
	}
}
