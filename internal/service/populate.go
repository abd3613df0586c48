package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gamestore-ingest/internal/config"
	"gamestore-ingest/internal/domain"
	"gamestore-ingest/internal/repository"
	"gamestore-ingest/internal/scraper"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// maxGalleryImages bounds gallery uploads per game; extra listing
	// entries are discarded.
	maxGalleryImages = 5

	// releaseDateLayout renders Unix-seconds release timestamps as
	// ISO-8601 with milliseconds, UTC.
	releaseDateLayout = "2006-01-02T15:04:05.000Z"
)

// CatalogFetcher is the listing source consumed by the pipeline.
type CatalogFetcher interface {
	Fetch(ctx context.Context, params map[string]string) ([]domain.Product, error)
}

// PopulateService runs the catalog ingestion pipeline: fetch one listing
// page, pre-create shared reference entities, then fan out per product.
type PopulateService interface {
	Populate(ctx context.Context, params map[string]string) *domain.RunSummary
}

type populateService struct {
	catalog  CatalogFetcher
	games    repository.GameRepository
	resolver EntityResolver
	details  scraper.Scraper
	assets   AssetUploader

	maxConcurrent int64
	productDelay  time.Duration

	logger *zap.Logger
}

// NewPopulateService creates a new instance of PopulateService
func NewPopulateService(
	catalog CatalogFetcher,
	games repository.GameRepository,
	resolver EntityResolver,
	details scraper.Scraper,
	assets AssetUploader,
	cfg config.PipelineConfig,
	logger *zap.Logger,
) PopulateService {
	maxConcurrent := int64(cfg.MaxConcurrent)
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &populateService{
		catalog:       catalog,
		games:         games,
		resolver:      resolver,
		details:       details,
		assets:        assets,
		maxConcurrent: maxConcurrent,
		productDelay:  cfg.ProductDelay,
		logger:        logger,
	}
}

// Populate runs one batch. Every failure is contained to its own product
// and reported in the summary; the run itself always completes.
func (s *populateService) Populate(ctx context.Context, params map[string]string) *domain.RunSummary {
	summary := &domain.RunSummary{RunID: uuid.NewString()}
	log := s.logger.With(zap.String("run_id", summary.RunID))

	products, err := s.catalog.Fetch(ctx, params)
	if err != nil {
		log.Error("catalog fetch failed", zap.Error(err))
		return summary
	}

	summary.Found = len(products)
	log.Info("catalog fetched", zap.Int("products", len(products)))
	if len(products) == 0 {
		return summary
	}

	s.prepareReferences(ctx, products, log)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(s.maxConcurrent)
	)

	for _, product := range products {
		wg.Add(1)
		go func(product domain.Product) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				summary.Failed++
				summary.Failures = append(summary.Failures, domain.ItemFailure{
					Title:  product.Title,
					Reason: "run cancelled",
				})
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			outcome := s.processProduct(ctx, product, log)

			mu.Lock()
			switch outcome.status {
			case statusCreated:
				summary.Created++
			case statusSkipped:
				summary.Skipped++
			case statusFailed:
				summary.Failed++
				summary.Failures = append(summary.Failures, domain.ItemFailure{
					Title:  product.Title,
					Reason: outcome.reason,
				})
			}
			mu.Unlock()
		}(product)
	}
	wg.Wait()

	log.Info("populate finished",
		zap.Int("found", summary.Found),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)

	return summary
}

// prepareReferences pre-creates every distinct developer, publisher,
// category and platform name in the batch so per-product resolution mostly
// hits existing records. Individual failures are logged by the resolver
// and do not abort the others.
func (s *populateService) prepareReferences(ctx context.Context, products []domain.Product, log *zap.Logger) {
	names := map[domain.EntityKind]map[string]struct{}{
		domain.KindDeveloper: {},
		domain.KindPublisher: {},
		domain.KindCategory:  {},
		domain.KindPlatform:  {},
	}
	collect := func(kind domain.EntityKind, name string) {
		if strings.TrimSpace(name) != "" {
			names[kind][name] = struct{}{}
		}
	}

	for _, product := range products {
		for _, genre := range product.Genres {
			collect(domain.KindCategory, genre)
		}
		for _, platform := range product.SupportedOperatingSystems {
			collect(domain.KindPlatform, platform)
		}
		collect(domain.KindDeveloper, product.Developer)
		collect(domain.KindPublisher, product.Publisher)
	}

	var wg sync.WaitGroup
	total := 0
	for kind, set := range names {
		for name := range set {
			total++
			wg.Add(1)
			go func(kind domain.EntityKind, name string) {
				defer wg.Done()
				s.resolver.Resolve(ctx, kind, name)
			}(kind, name)
		}
	}
	wg.Wait()

	log.Info("reference entities prepared", zap.Int("distinct_names", total))
}

type productStatus int

const (
	statusCreated productStatus = iota
	statusSkipped
	statusFailed
)

type productOutcome struct {
	status productStatus
	reason string
}

func (s *populateService) processProduct(ctx context.Context, product domain.Product, log *zap.Logger) productOutcome {
	_, err := s.games.FindByName(ctx, product.Title)
	if err == nil {
		log.Debug("game already exists", zap.String("title", product.Title))
		return productOutcome{status: statusSkipped}
	}
	if !errors.Is(err, repository.ErrGameNotFound) {
		// Creating on an inconclusive lookup could duplicate the game, so
		// the item fails instead.
		log.Error("game lookup failed", zap.String("title", product.Title), zap.Error(err))
		return productOutcome{status: statusFailed, reason: "game lookup failed"}
	}

	log.Info("creating game", zap.String("title", product.Title))

	record := s.buildRecord(ctx, product, log)
	game, err := s.games.Create(ctx, record)
	if err != nil {
		log.Error("game create failed", zap.String("title", product.Title), zap.Error(err))
		return productOutcome{status: statusFailed, reason: "game create failed"}
	}

	if product.Image != "" {
		s.assets.UploadImage(ctx, product.Image, game, CoverField)
	}

	gallery := product.Gallery
	if len(gallery) > maxGalleryImages {
		gallery = gallery[:maxGalleryImages]
	}
	for _, imageRef := range gallery {
		s.assets.UploadImage(ctx, imageRef, game, GalleryField)
	}

	// Throttle the per-product completion rate to spare the image source
	// and the store.
	if s.productDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(s.productDelay):
		}
	}

	return productOutcome{status: statusCreated}
}

// buildRecord assembles the store document for one product. Relation
// resolution and the detail scrape run concurrently; unresolved relations
// and failed scrapes are simply left out of the record.
func (s *populateService) buildRecord(ctx context.Context, product domain.Product, log *zap.Logger) *domain.GameRecord {
	record := &domain.GameRecord{
		Name:  product.Title,
		Slug:  gameSlug(product.Slug),
		Price: product.Price.Amount,
	}
	if product.GlobalReleaseDate > 0 {
		record.ReleaseDate = releaseDate(product.GlobalReleaseDate)
	}

	var (
		wg        sync.WaitGroup
		details   *scraper.Details
		publisher *int
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		record.Categories = s.resolveAll(ctx, domain.KindCategory, product.Genres)
	}()
	go func() {
		defer wg.Done()
		record.Platforms = s.resolveAll(ctx, domain.KindPlatform, product.SupportedOperatingSystems)
	}()
	go func() {
		defer wg.Done()
		record.Developers = s.resolveAll(ctx, domain.KindDeveloper, []string{product.Developer})
	}()
	go func() {
		defer wg.Done()
		if entity := s.resolver.Resolve(ctx, domain.KindPublisher, product.Publisher); entity != nil {
			publisher = &entity.ID
		}
	}()
	go func() {
		defer wg.Done()
		scraped, err := s.details.FetchDetails(ctx, product.Slug)
		if err != nil {
			log.Warn("detail scrape failed", zap.String("slug", product.Slug), zap.Error(err))
			return
		}
		details = scraped
	}()
	wg.Wait()

	record.Publisher = publisher
	if details != nil {
		record.Rating = details.Rating
		record.ShortDescription = details.ShortDescription
		record.Description = details.Description
	}

	return record
}

// resolveAll maps names onto store entity IDs, dropping any that stay
// unresolved.
func (s *populateService) resolveAll(ctx context.Context, kind domain.EntityKind, names []string) []int {
	var ids []int
	for _, name := range names {
		if entity := s.resolver.Resolve(ctx, kind, name); entity != nil {
			ids = append(ids, entity.ID)
		}
	}
	return ids
}

// gameSlug normalizes a listing slug for the store (underscores become
// hyphens).
func gameSlug(productSlug string) string {
	return strings.ReplaceAll(productSlug, "_", "-")
}

// releaseDate renders a Unix-seconds timestamp as an ISO-8601 UTC date.
func releaseDate(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format(releaseDateLayout)
}
