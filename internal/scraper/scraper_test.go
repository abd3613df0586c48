package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func detailPage(ratingIcon, descriptionHTML string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
	%s
	<div class="description">%s</div>
</body>
</html>`, ratingIcon, descriptionHTML)
}

func newDetailServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/game/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
}

func TestFetchDetails_RatingFromIconFragment(t *testing.T) {
	icon := `<svg class="age-restrictions__icon"><use xlink:href="/sprites.svg#PEGI_18"></use></svg>`
	srv := newDetailServer(t, detailPage(icon, "<p>A grim game.</p>"))
	defer srv.Close()

	details, err := New(srv.URL).FetchDetails(context.Background(), "grim-game")
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}

	if details.Rating != "PEGI18" {
		t.Errorf("expected rating PEGI18, got %q", details.Rating)
	}
}

func TestFetchDetails_MissingIconMeansUnrestricted(t *testing.T) {
	srv := newDetailServer(t, detailPage("", "<p>A family game.</p>"))
	defer srv.Close()

	details, err := New(srv.URL).FetchDetails(context.Background(), "family-game")
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}

	if details.Rating != RatingUnrestricted {
		t.Errorf("expected rating %q, got %q", RatingUnrestricted, details.Rating)
	}
}

func TestFetchDetails_DescriptionFields(t *testing.T) {
	long := strings.Repeat("x", 400)
	srv := newDetailServer(t, detailPage("", "  <p>"+long+"</p>  "))
	defer srv.Close()

	details, err := New(srv.URL).FetchDetails(context.Background(), "wordy-game")
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}

	if got := len([]rune(details.ShortDescription)); got != shortDescriptionLimit {
		t.Errorf("expected short description of %d characters, got %d", shortDescriptionLimit, got)
	}
	if !strings.Contains(details.Description, "<p>") {
		t.Errorf("expected description to keep the raw markup, got %q", details.Description)
	}
}

func TestFetchDetails_MissingDescriptionIsAnError(t *testing.T) {
	srv := newDetailServer(t, `<html><body><div class="other"></div></body></html>`)
	defer srv.Close()

	if _, err := New(srv.URL).FetchDetails(context.Background(), "bare-page"); err == nil {
		t.Fatal("expected an error for a page without a description element")
	}
}

func TestFetchDetails_ServerErrorIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).FetchDetails(context.Background(), "broken-page"); err == nil {
		t.Fatal("expected an error for a failing detail page")
	}
}

func TestFetchDetails_FragmentlessIconFallsBack(t *testing.T) {
	icon := `<svg class="age-restrictions__icon"><use xlink:href="/sprites.svg"></use></svg>`
	srv := newDetailServer(t, detailPage(icon, "<p>ok</p>"))
	defer srv.Close()

	details, err := New(srv.URL).FetchDetails(context.Background(), "odd-icon")
	if err != nil {
		t.Fatalf("FetchDetails failed: %v", err)
	}
	if details.Rating != RatingUnrestricted {
		t.Errorf("expected fallback rating, got %q", details.Rating)
	}
}

func TestProperty_ShortDescriptionNeverExceedsLimit(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("truncation bounds any input to the limit", prop.ForAll(
		func(text string) bool {
			return len([]rune(truncate(text, shortDescriptionLimit))) <= shortDescriptionLimit
		},
		gen.AnyString(),
	))

	properties.Property("short inputs pass through unchanged", prop.ForAll(
		func(text string) bool {
			if len([]rune(text)) > shortDescriptionLimit {
				return true
			}
			return truncate(text, shortDescriptionLimit) == text
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
