package sanitize

import (
	"strings"
	"testing"
)

func TestDescriptionKeepsInlineFormatting(t *testing.T) {
	t.Parallel()

	got := Description(`  <p>Check the <strong>meter</strong> reading</p>  `)
	if got != `<p>Check the <strong>meter</strong> reading</p>` {
		t.Fatalf("unexpected sanitized description: %q", got)
	}
}

func TestDescriptionDropsScripts(t *testing.T) {
	t.Parallel()

	got := Description(`Before<script>alert(1)</script><img src=x onerror=alert(1)>After`)
	if strings.Contains(got, "script") || strings.Contains(got, "onerror") || strings.Contains(got, "<img") {
		t.Fatalf("expected unsafe markup to be removed, got %q", got)
	}
	if !strings.Contains(got, "Before") || !strings.Contains(got, "After") {
		t.Fatalf("expected text content to survive, got %q", got)
	}
}

func TestDescriptionLinks(t *testing.T) {
	t.Parallel()

	got := Description(`<a href="javascript:alert(1)">bad</a> <a href="https://example.com">ok</a>`)
	if strings.Contains(got, "javascript:") {
		t.Fatalf("expected javascript URL to be dropped, got %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) || !strings.Contains(got, `rel="nofollow`) {
		t.Fatalf("expected safe link with nofollow, got %q", got)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()

	if got := Strip(`<h1>Site <em>visit</em></h1>`); got != "Site visit" {
		t.Fatalf("unexpected stripped text: %q", got)
	}
	if got := Strip("   "); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
