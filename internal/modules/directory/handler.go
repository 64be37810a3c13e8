// Package directory implements the course browsing classifiers: the
// show-all-courses summary, explicit "domain <n>" selection, and bare
// numeric selection disambiguated by the per-user session context.
package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/cache"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/reply"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/session"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// ModuleName identifies this handler in logs, metrics, and intent routing.
const ModuleName = "directory"

// summaryCacheKey is the response cache key for the directory summary.
const summaryCacheKey = "directory:summary"

// showAllContained trigger the directory summary anywhere in the message,
// on word boundaries; "i want to see all courses" counts.
var showAllContained = []string{
	"show all courses",
	"list all courses",
	"all courses",
}

// showAllExact trigger the summary only as the entire message; a bare
// "courses" inside a longer sentence is too ambiguous to hijack.
var showAllExact = map[string]bool{
	"courses":      true,
	"course list":  true,
	"show courses": true,
	"list courses": true,
}

// isShowAll reports whether the normalized message asks for the full
// directory summary.
func isShowAll(norm string) bool {
	if showAllExact[norm] {
		return true
	}
	padded := " " + norm + " "
	for _, phrase := range showAllContained {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// Handler handles directory browsing and domain selection.
type Handler struct {
	sessions *session.Store
	cache    *cache.Cache
	logger   *logger.Logger
}

// NewHandler creates a new directory handler. The cache holds rendered
// listings; they only change on catalog reload, so a short TTL is plenty.
func NewHandler(sessions *session.Store, c *cache.Cache, log *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		cache:    c,
		logger:   log,
	}
}

// Name returns the module name.
func (h *Handler) Name() string {
	return ModuleName
}

// CanHandle returns true for show-all phrases, "domain <n>", and
// all-digit messages.
func (h *Handler) CanHandle(text string) bool {
	norm := stringutil.Normalize(text)
	if norm == "" {
		return false
	}
	if isShowAll(norm) {
		return true
	}
	if _, ok := parseDomainPhrase(norm); ok {
		return true
	}
	return stringutil.IsNumeric(norm)
}

// Handle routes between the summary and a domain listing.
func (h *Handler) Handle(ctx context.Context, msg bot.IncomingMessage) string {
	log := h.logger.WithModule(ModuleName)
	norm := stringutil.Normalize(msg.Text)

	if isShowAll(norm) {
		log.DebugContext(ctx, "Handling show-all courses")
		h.sessions.Clear(msg.From)
		return h.summary()
	}

	if n, ok := parseDomainPhrase(norm); ok {
		return h.selectDomain(ctx, msg.From, n)
	}

	if stringutil.IsNumeric(norm) {
		n, err := strconv.Atoi(norm)
		if err != nil {
			// Digits that overflow int are nonsense input; let the
			// processor apply the fallback policy.
			return ""
		}
		return h.selectDomain(ctx, msg.From, n)
	}

	return ""
}

// selectDomain emits the listing for domain n, remembering the selection.
func (h *Handler) selectDomain(ctx context.Context, userID string, n int) string {
	log := h.logger.WithModule(ModuleName).WithField("domain_id", n)

	d, ok := catalog.DomainByID(n)
	if !ok {
		log.DebugContext(ctx, "Domain selection out of range")
		return reply.DomainRangeError(n)
	}

	log.DebugContext(ctx, "Handling domain selection")
	h.sessions.SetDomain(userID, n)

	out, err := h.cache.GetOrFill(fmt.Sprintf("directory:domain:%d", n), func() (string, error) {
		return reply.FormatDomainListing(d), nil
	})
	if err != nil {
		return reply.FormatDomainListing(d)
	}
	return out
}

// summary emits the cached 6-domain directory overview.
func (h *Handler) summary() string {
	out, err := h.cache.GetOrFill(summaryCacheKey, func() (string, error) {
		return reply.FormatDirectorySummary(catalog.Directory()), nil
	})
	if err != nil {
		return reply.FormatDirectorySummary(catalog.Directory())
	}
	return out
}

// parseDomainPhrase matches "domain <n>" as the entire message.
func parseDomainPhrase(norm string) (int, bool) {
	rest, ok := strings.CutPrefix(norm, "domain ")
	if !ok {
		return 0, false
	}
	if !stringutil.IsNumeric(rest) {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

var _ bot.Handler = (*Handler)(nil)
