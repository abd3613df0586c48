// Package scraper extracts enrichment fields from storefront detail pages.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	ratingSelector      = ".age-restrictions__icon use"
	descriptionSelector = ".description"

	// shortDescriptionLimit bounds the teaser text taken from the full
	// description block.
	shortDescriptionLimit = 160

	// RatingUnrestricted is reported for pages without an age-restriction
	// icon.
	RatingUnrestricted = "FREE"
)

// Details holds the fields scraped from one product detail page.
type Details struct {
	Rating           string
	ShortDescription string
	Description      string
}

// Scraper fetches a detail page by slug and parses its markup.
type Scraper interface {
	FetchDetails(ctx context.Context, slug string) (*Details, error)
}

type scraper struct {
	baseURL string
	http    *http.Client
}

// New creates a Scraper rooted at the storefront's base URL.
func New(baseURL string) Scraper {
	return &scraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchDetails scrapes the rating icon and description block from the
// detail page for slug. A missing description element is an error; a
// missing rating icon falls back to RatingUnrestricted.
func (s *scraper) FetchDetails(ctx context.Context, slug string) (*Details, error) {
	u := fmt.Sprintf("%s/game/%s", s.baseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build detail request: %w", err)
	}

	res, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detail request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail page returned status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}

	description := doc.Find(descriptionSelector).First()
	if description.Length() == 0 {
		return nil, fmt.Errorf("detail page for %q has no description element", slug)
	}

	markup, err := description.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to extract description markup: %w", err)
	}

	return &Details{
		Rating:           extractRating(doc),
		ShortDescription: truncate(strings.TrimSpace(description.Text()), shortDescriptionLimit),
		Description:      markup,
	}, nil
}

// extractRating reads the rating code from the icon reference's fragment
// identifier, with underscores stripped (e.g. "#PEGI_18" -> "PEGI18").
func extractRating(doc *goquery.Document) string {
	icon := doc.Find(ratingSelector).First()

	// The html parser splits xlink:href into a namespaced "href" inside
	// SVG content, so both spellings have to be checked.
	href, ok := icon.Attr("xlink:href")
	if !ok {
		href, ok = icon.Attr("href")
	}
	if !ok {
		return RatingUnrestricted
	}

	fragment := strings.Index(href, "#")
	if fragment < 0 {
		return RatingUnrestricted
	}

	return strings.ReplaceAll(href[fragment+1:], "_", "")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
