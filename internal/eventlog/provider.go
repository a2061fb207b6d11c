package eventlog

import (
	"context"
	"fmt"
	"time"

	"jira-wip/internal/jira"
	"jira-wip/internal/stats"

	"github.com/rs/zerolog/log"
)

// DefaultCacheMaxAge is how long a cached event log is trusted before re-ingestion.
const DefaultCacheMaxAge = 24 * time.Hour

// LogProvider orchestrates data ingestion and event retrieval.
type LogProvider struct {
	client   jira.Client
	store    *EventStore
	cacheDir string

	// PageSize is the number of issues requested per search page.
	PageSize int
	// CacheMaxAge is the age after which a cache file is considered stale. Zero or
	// negative means the cache never goes stale.
	CacheMaxAge time.Duration
}

func NewLogProvider(client jira.Client, store *EventStore, cacheDir string) *LogProvider {
	return &LogProvider{
		client:      client,
		store:       store,
		cacheDir:    cacheDir,
		PageSize:    jira.DefaultPageSize,
		CacheMaxAge: DefaultCacheMaxAge,
	}
}

// Hydrate ensures the event log of a source is populated. The cache is used unless
// refresh is requested, it is empty, or it is older than CacheMaxAge; otherwise every
// issue matching jql is fetched and the cache rewritten.
func (p *LogProvider) Hydrate(ctx context.Context, sourceID string, jql string, refresh bool) error {
	if err := ValidateSourceID(sourceID); err != nil {
		return err
	}

	// 1. Try to Load from Cache
	if !refresh && p.cacheDir != "" && p.store.Count(sourceID) == 0 {
		if err := p.store.Load(p.cacheDir, sourceID); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Hydrate: Failed to load cache")
		}
	}

	// 2. Validate Cache Recency
	stale := false
	if p.CacheMaxAge > 0 && p.cacheDir != "" {
		if mod, ok := CacheModTime(p.cacheDir, sourceID); ok && time.Since(mod) > p.CacheMaxAge {
			log.Info().Str("source", sourceID).Time("written", mod).Msg("Cache is stale, performing full re-ingestion")
			stale = true
		}
	}

	if !refresh && !stale && p.store.Count(sourceID) > 0 {
		log.Debug().Str("source", sourceID).Int("events", p.store.Count(sourceID)).Msg("Hydrate: Served from cache")
		return nil
	}

	if p.client == nil {
		if p.store.Count(sourceID) > 0 {
			log.Warn().Str("source", sourceID).Msg("No Jira client configured, using stale cache")
			return nil
		}
		return fmt.Errorf("no cached events for %q and no Jira client configured", sourceID)
	}

	// 3. Full Ingestion
	log.Info().Str("source", sourceID).Str("jql", jql).Msg("Starting hydration process")
	issues, err := jira.FetchAll(ctx, p.client, jql, p.PageSize, func(fetched, total int) {
		log.Info().Int("fetched", fetched).Int("total", total).Msg("Hydrating")
	})
	if err != nil {
		return fmt.Errorf("hydration failed: %w", err)
	}

	p.store.Clear(sourceID)
	p.store.Append(sourceID, TransformIssues(issues))

	// 4. Save to Cache
	if p.cacheDir != "" {
		if err := p.store.Save(p.cacheDir, sourceID); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Hydrate: Failed to save cache")
		}
	}

	log.Info().Int("issues", len(issues)).Int("events", p.store.Count(sourceID)).Msg("Hydration complete")
	return nil
}

// Histories returns the per-item histories of a hydrated source.
func (p *LogProvider) Histories(sourceID string) []stats.ItemHistory {
	return BuildHistories(p.store.Events(sourceID))
}

func (p *LogProvider) GetEventsForIssue(sourceID, issueKey string) []IssueEvent {
	return p.store.GetEventsForIssue(sourceID, issueKey)
}

func (p *LogProvider) GetEventCount(sourceID string) int {
	return p.store.Count(sourceID)
}
