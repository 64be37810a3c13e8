// Package lookup implements free-text course lookup, the last classifier
// in the chain. It claims any remaining message of two or more normalized
// characters and runs it through the tiered course resolver.
package lookup

import (
	"context"
	"sync"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/cache"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/resolve"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// ModuleName identifies this handler in logs, metrics, and intent routing.
const ModuleName = "lookup"

// Handler resolves free text to course details.
type Handler struct {
	mu         sync.RWMutex
	resolver   *resolve.Resolver
	cache      *cache.Cache
	logger     *logger.Logger
	maxCompare int
}

// NewHandler creates a new lookup handler. maxCompare bounds how many
// courses one comparison reply may contain.
func NewHandler(r *resolve.Resolver, c *cache.Cache, log *logger.Logger, maxCompare int) *Handler {
	if maxCompare < 2 {
		maxCompare = 2
	}
	return &Handler{
		resolver:   r,
		cache:      c,
		logger:     log,
		maxCompare: maxCompare,
	}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// SetResolver swaps in a resolver built over a freshly loaded catalog.
// Safe to call while messages are in flight.
func (h *Handler) SetResolver(r *resolve.Resolver) {
	h.mu.Lock()
	h.resolver = r
	h.mu.Unlock()
}

func (h *Handler) getResolver() *resolve.Resolver {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.resolver
}

// CanHandle claims any message with at least two normalized characters.
// Registered last, so everything the earlier classifiers passed on
// lands here.
func (h *Handler) CanHandle(text string) bool {
	return len(stringutil.Normalize(text)) >= 2
}

// Handle resolves the query and formats the result. Returns an empty
// reply on a miss so the processor can apply NLU and the fallback.
func (h *Handler) Handle(ctx context.Context, msg bot.IncomingMessage) string {
	log := h.logger.WithModule(ModuleName)
	resolver := h.getResolver()

	if resolve.IsComparison(msg.Text) {
		recs := resolver.ResolveAll(msg.Text, h.maxCompare)
		switch {
		case len(recs) >= 2:
			log.WithField("courses", len(recs)).DebugContext(ctx, "Handling course comparison")
			return reply.FormatComparison(recs)
		case len(recs) == 1:
			// Only one side resolved; show it as a plain lookup.
			log.WithField("course", recs[0].Name).DebugContext(ctx, "Comparison resolved one course")
			return h.courseDetail(recs[0])
		}
		// Nothing resolved from the segments; fall through to a
		// whole-text resolve.
	}

	rec := resolver.Resolve(msg.Text)
	if rec == nil {
		log.WithField("query", stringutil.Truncate(msg.Text, 64)).
			DebugContext(ctx, "No course matched")
		return ""
	}

	log.WithField("course", rec.Name).DebugContext(ctx, "Resolved course")
	return h.courseDetail(rec)
}

// courseDetail renders a course through the response cache. Rendered
// details only change on catalog reload.
func (h *Handler) courseDetail(rec *catalog.CourseRecord) string {
	out, err := h.cache.GetOrFill("course:"+stringutil.Normalize(rec.Name), func() (string, error) {
		return reply.FormatCourse(rec), nil
	})
	if err != nil {
		return reply.FormatCourse(rec)
	}
	return out
}

var _ bot.Handler = (*Handler)(nil)
