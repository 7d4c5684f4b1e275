package photos

import (
	"testing"

	"github.com/chromedp/cdproto/network"
)

func TestBlockedURLPatternsBuildNetworkCommand(t *testing.T) {
	params := network.SetBlockedURLS(blockedURLPatterns)
	if params == nil {
		t.Fatal("expected blocked-URL params")
	}
	if len(params.Urls) != len(blockedURLPatterns) {
		t.Fatalf("blocked urls = %d, want %d", len(params.Urls), len(blockedURLPatterns))
	}
	for _, want := range []string{"*.png", "*.jpg", "*.webp", "*.woff2"} {
		found := false
		for _, got := range params.Urls {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("pattern %q missing from blocked urls", want)
		}
	}
}

func TestNewGalleryScraperDefaults(t *testing.T) {
	s := NewGalleryScraper("", 0)
	if s.checkLimit != defaultCheckLimit {
		t.Fatalf("check limit = %d, want %d", s.checkLimit, defaultCheckLimit)
	}

	s = NewGalleryScraper("/usr/bin/chromium", 25)
	if s.chromeBin != "/usr/bin/chromium" || s.checkLimit != 25 {
		t.Fatalf("unexpected scraper config: %+v", s)
	}
}
