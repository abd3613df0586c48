package service

import (
	"strings"
	"testing"
	"time"

	"github.com/gosimple/slug"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestGameSlug(t *testing.T) {
	cases := map[string]string{
		"baldurs_gate":         "baldurs-gate",
		"the_riftbreaker_demo": "the-riftbreaker-demo",
		"stoneshard":           "stoneshard",
	}

	for input, want := range cases {
		if got := gameSlug(input); got != want {
			t.Errorf("gameSlug(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestReleaseDate(t *testing.T) {
	if got := releaseDate(1609459200); got != "2021-01-01T00:00:00.000Z" {
		t.Errorf("releaseDate(1609459200) = %q, want 2021-01-01T00:00:00.000Z", got)
	}
}

func TestEntitySlugFromName(t *testing.T) {
	if got := slug.Make("Foo Bar"); got != "foo-bar" {
		t.Errorf("slug.Make(\"Foo Bar\") = %q, want foo-bar", got)
	}
}

func TestProperty_GameSlugNeverContainsUnderscores(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every underscore becomes a hyphen", prop.ForAll(
		func(input string) bool {
			return !strings.Contains(gameSlug(input), "_")
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_EntitySlugsAreLowercase(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("derived slugs are lowercase", prop.ForAll(
		func(name string) bool {
			derived := slug.Make(name)
			return derived == strings.ToLower(derived)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ReleaseDateRoundTrips(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rendered dates parse back to the same instant", prop.ForAll(
		func(seconds int64) bool {
			rendered := releaseDate(seconds)
			parsed, err := time.Parse(releaseDateLayout, rendered)
			if err != nil {
				return false
			}
			return parsed.Unix() == seconds
		},
		gen.Int64Range(0, 4102444800), // through 2100
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
