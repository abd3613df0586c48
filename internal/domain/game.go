package domain

// Product is one raw listing entry as returned by the storefront catalog.
// The shape is owned by the remote service; the pipeline treats it as
// immutable input.
type Product struct {
	Title                     string   `json:"title"`
	Slug                      string   `json:"slug"`
	Price                     Price    `json:"price"`
	GlobalReleaseDate         int64    `json:"globalReleaseDate"`
	Genres                    []string `json:"genres"`
	SupportedOperatingSystems []string `json:"supportedOperatingSystems"`
	Developer                 string   `json:"developer"`
	Publisher                 string   `json:"publisher"`
	Image                     string   `json:"image"`
	Gallery                   []string `json:"gallery"`
}

// Price carries the listing price. The upstream payload encodes the amount
// as a string and the store schema owns any numeric coercion, so it is
// forwarded as-is.
type Price struct {
	Amount string `json:"amount"`
}

// EntityKind selects one of the four named reference types in the store.
type EntityKind string

const (
	KindDeveloper EntityKind = "developer"
	KindPublisher EntityKind = "publisher"
	KindCategory  EntityKind = "category"
	KindPlatform  EntityKind = "platform"
)

// Entity is a named reference record (developer, publisher, category or
// platform) persisted in the content store. Name is effectively unique
// within a kind.
type Entity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// GameRecord is the document submitted to the store to create one game.
// Relation fields carry store entity IDs; scraped fields are omitted when
// enrichment failed.
type GameRecord struct {
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Price            string `json:"price"`
	ReleaseDate      string `json:"release_date,omitempty"`
	Categories       []int  `json:"categories,omitempty"`
	Platforms        []int  `json:"platforms,omitempty"`
	Developers       []int  `json:"developers,omitempty"`
	Publisher        *int   `json:"publisher,omitempty"`
	Rating           string `json:"rating,omitempty"`
	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

// Game is a stored game as returned by the content store.
type Game struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ItemFailure records one product the pipeline could not persist.
type ItemFailure struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// RunSummary aggregates the outcome of one populate run. Found always
// equals Created + Skipped + Failed once the run completes.
type RunSummary struct {
	RunID    string        `json:"run_id"`
	Found    int           `json:"found"`
	Created  int           `json:"created"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Failures []ItemFailure `json:"failures,omitempty"`
}
