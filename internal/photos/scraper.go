package photos

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"gbp-backend/internal/shared/telemetry"
)

const (
	placeBaseURL = "https://www.google.com/maps/place/"

	defaultCheckLimit = 100
	perPhotoTimeout   = 5 * time.Second
	entryTimeout      = 15 * time.Second
	navigateTimeout   = 30 * time.Second
)

// blockedURLPatterns keeps the browser from downloading media the scan
// never inspects.
var blockedURLPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp",
	"*.woff", "*.woff2", "*.ttf",
}

// GalleryScraper walks a business's public photo gallery in a headless
// browser and classifies each photo's uploader.
type GalleryScraper struct {
	chromeBin  string
	checkLimit int
}

// NewGalleryScraper constructs a scraper. chromeBin may be empty to use
// the default Chrome discovery.
func NewGalleryScraper(chromeBin string, checkLimit int) *GalleryScraper {
	if checkLimit <= 0 {
		checkLimit = defaultCheckLimit
	}
	return &GalleryScraper{
		chromeBin:  chromeBin,
		checkLimit: checkLimit,
	}
}

// ScrapeResult carries the attributions plus a screenshot taken when
// the scrape failed before entering the gallery.
type ScrapeResult struct {
	Attributions []Attribution
	Screenshot   []byte
}

// Scrape opens the business page by its stable identifier and walks the
// gallery. Entry failures return an empty attribution list together
// with a best-effort screenshot. The caller owns the wall-clock budget
// through ctx.
func (s *GalleryScraper) Scrape(ctx context.Context, placeID, title string) ScrapeResult {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if err := s.enterGallery(browserCtx, placeID, title); err != nil {
		telemetry.Warn("photos.scrape", map[string]any{
			"place_id": placeID, "error": err.Error(),
		})
		return ScrapeResult{Screenshot: captureScreenshot(browserCtx)}
	}

	return ScrapeResult{Attributions: s.walkGallery(browserCtx, title)}
}

// enterGallery navigates to the canonical place page, dismisses any
// consent interstitial, and opens the photo viewer through the first
// entry strategy that works.
func (s *GalleryScraper) enterGallery(ctx context.Context, placeID, title string) error {
	placeURL := placeBaseURL + "?q=place_id:" + url.QueryEscape(placeID)

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()
	err := chromedp.Run(navCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedURLPatterns),
		chromedp.Navigate(placeURL),
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Best effort, silently absent outside the EU.
			return chromedp.Evaluate(consentScript, nil).Do(ctx)
		}),
		chromedp.WaitVisible(`div[role="main"]`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate to place page: %w", err)
	}

	entryCtx, cancelEntry := context.WithTimeout(ctx, entryTimeout)
	defer cancelEntry()
	var entered bool
	err = chromedp.Run(entryCtx,
		chromedp.Evaluate(openGalleryScript, &entered),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("open gallery: %w", err)
	}
	if !entered {
		return fmt.Errorf("no gallery entry point found for %q", title)
	}
	return nil
}

// walkGallery traverses the viewer one photo at a time with the Next
// control, classifying as it goes. Per-photo failures record Owner and
// move on.
func (s *GalleryScraper) walkGallery(ctx context.Context, title string) []Attribution {
	var attributions []Attribution

	for len(attributions) < s.checkLimit {
		attributions = append(attributions, Attribution{
			Uploader: s.classifyCurrentPhoto(ctx, title),
		})

		advanced, err := s.clickNext(ctx)
		if err != nil || !advanced {
			break
		}
	}

	telemetry.Info("photos.scrape", map[string]any{
		"photos_analyzed": len(attributions),
	})
	return attributions
}

// classifyCurrentPhoto inspects the displayed photo's attribution link.
// No link within the timeout means embedded video or 360 media, which
// the gallery attributes to the owner.
func (s *GalleryScraper) classifyCurrentPhoto(ctx context.Context, title string) string {
	photoCtx, cancel := context.WithTimeout(ctx, perPhotoTimeout)
	defer cancel()

	var attributionHTML string
	err := chromedp.Run(photoCtx,
		chromedp.Evaluate(attributionScript, &attributionHTML),
	)
	if err != nil || strings.TrimSpace(attributionHTML) == "" {
		return UploaderOwner
	}

	text, err := attributionText(attributionHTML)
	if err != nil {
		return UploaderOwner
	}
	return ClassifyUploader(text, title)
}

func (s *GalleryScraper) clickNext(ctx context.Context) (bool, error) {
	nextCtx, cancel := context.WithTimeout(ctx, perPhotoTimeout)
	defer cancel()

	var advanced bool
	err := chromedp.Run(nextCtx,
		chromedp.Evaluate(nextPhotoScript, &advanced),
		chromedp.Sleep(500*time.Millisecond),
	)
	return advanced, err
}

// attributionText extracts the visible uploader name from the
// attribution markup.
func attributionText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	for _, selector := range []string{"a", "span", "div"} {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text, nil
		}
	}
	return strings.TrimSpace(doc.Text()), nil
}

func captureScreenshot(ctx context.Context) []byte {
	shotCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var shot []byte
	err := chromedp.Run(shotCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		shot, err = page.CaptureScreenshot().Do(ctx)
		return err
	}))
	if err != nil {
		return nil
	}
	return shot
}

const consentScript = `(function () {
  const selectors = [
    'button[aria-label="Reject all"]',
    'button[aria-label="Accept all"]',
    'button[aria-label="I agree"]',
    'button.VfPpkd-LgbsSe-OWXEXe-k8QpJ'
  ];
  for (const sel of selectors) {
    const btn = document.querySelector(sel);
    if (btn) {
      btn.click();
      return true;
    }
  }
  return false;
})();`

// openGalleryScript tries the entry strategies in priority order: a
// "see all photos" control, the Photos tab, then the hero image.
const openGalleryScript = `(function () {
  const byText = (needle) => {
    const buttons = document.querySelectorAll('button, a[role="button"]');
    for (const btn of buttons) {
      const label = ((btn.getAttribute('aria-label') || '') + ' ' + (btn.textContent || '')).toLowerCase();
      if (label.includes(needle)) {
        return btn;
      }
    }
    return null;
  };

  const seeAll = byText('see photos') || byText('all photos');
  if (seeAll) {
    seeAll.click();
    return true;
  }

  const tabs = document.querySelectorAll('button[role="tab"]');
  for (const tab of tabs) {
    const label = ((tab.getAttribute('aria-label') || '') + ' ' + (tab.textContent || '')).toLowerCase();
    if (label.includes('photos')) {
      tab.click();
      return true;
    }
  }

  const hero = document.querySelector('button[jsaction*="heroHeaderImage"], div[role="main"] button img');
  if (hero) {
    (hero.closest('button') || hero).click();
    return true;
  }

  return false;
})();`

// attributionScript returns the markup of the displayed photo's
// uploader attribution link, or an empty string when absent.
const attributionScript = `(function () {
  const selectors = [
    'div[id="titlecard"] a[aria-label]',
    'a[href*="/maps/contrib/"]',
    'div.JHngof',
    'div.UXc6zc'
  ];
  for (const sel of selectors) {
    const node = document.querySelector(sel);
    if (node && node.textContent.trim()) {
      return node.outerHTML;
    }
  }
  return '';
})();`

// nextPhotoScript advances the viewer and reports whether the Next
// control was present and enabled.
const nextPhotoScript = `(function () {
  const selectors = [
    'button[aria-label="Next"]',
    'button[jsaction*="pane.photoviewer.next"]'
  ];
  for (const sel of selectors) {
    const btn = document.querySelector(sel);
    if (btn && !btn.disabled && btn.getAttribute('aria-disabled') !== 'true') {
      btn.click();
      return true;
    }
  }
  return false;
})();`
