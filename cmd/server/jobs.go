// Package main provides the course assistant server entry point.
package main

import (
	"context"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/cache"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/lookup"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/resolve"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/session"
)

// sweepSessions periodically drops idle conversation sessions.
func sweepSessions(ctx context.Context, sessions *session.Store, log *logger.Logger) {
	ticker := time.NewTicker(config.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Sweep(); removed > 0 {
				log.WithField("removed", removed).
					WithField("remaining", sessions.Len()).
					Debug("Session sweep complete")
			}
		}
	}
}

// sweepCaches periodically drops expired reply cache entries.
func sweepCaches(ctx context.Context, log *logger.Logger, caches ...*cache.Cache) {
	ticker := time.NewTicker(config.CacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, c := range caches {
				removed += c.Sweep()
			}
			if removed > 0 {
				log.WithField("removed", removed).Debug("Cache sweep complete")
			}
		}
	}
}

// refreshCatalog periodically reloads the catalog from its source chain and
// swaps a freshly built resolver into the lookup handler. Rendered replies
// are cleared so they cannot describe records that no longer exist.
func refreshCatalog(
	ctx context.Context,
	loader *catalog.Loader,
	lookupHandler *lookup.Handler,
	synonyms *resolve.Synonyms,
	opts resolve.Options,
	m *metrics.Metrics,
	log *logger.Logger,
	caches ...*cache.Cache,
) {
	// First refresh after a short delay to let the server stabilize
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.CatalogRefreshInitialDelay):
		performCatalogRefresh(ctx, loader, lookupHandler, synonyms, opts, m, log, caches...)
	}

	ticker := time.NewTicker(config.CatalogRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performCatalogRefresh(ctx, loader, lookupHandler, synonyms, opts, m, log, caches...)
		}
	}
}

// performCatalogRefresh executes one catalog reload. A failed load keeps
// the current resolver; the bot never serves an empty catalog because a
// source went away.
func performCatalogRefresh(
	ctx context.Context,
	loader *catalog.Loader,
	lookupHandler *lookup.Handler,
	synonyms *resolve.Synonyms,
	opts resolve.Options,
	m *metrics.Metrics,
	log *logger.Logger,
	caches ...*cache.Cache,
) {
	loadCtx, cancel := context.WithTimeout(ctx, config.CatalogDownload)
	defer cancel()

	cat, err := loader.Load(loadCtx)
	if err != nil {
		log.WithError(err).Warn("Catalog refresh failed, keeping current catalog")
		return
	}

	lookupHandler.SetResolver(resolve.New(cat, synonyms, opts, m))
	cleared := 0
	for _, c := range caches {
		cleared += c.Clear()
	}
	log.WithField("records", cat.Len()).
		WithField("cleared_entries", cleared).
		Info("Catalog refreshed")
}

// updateGauges periodically refreshes gauge metrics that are not updated
// on every mutation.
func updateGauges(ctx context.Context, sessions *session.Store, m *metrics.Metrics) {
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	m.SetSessionsActive(sessions.Len())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetSessionsActive(sessions.Len())
		}
	}
}
