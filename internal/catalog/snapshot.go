package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
)

// embeddedCourses is the build-time catalog snapshot, used when no object
// store or local file source is configured or when both fail.
//
//go:embed data/courses.json
var embeddedCourses []byte

// ObjectStore is the subset of the object store client the loader needs.
type ObjectStore interface {
	DownloadDecompressed(ctx context.Context, key string) ([]byte, string, error)
}

// Loader resolves the catalog from the first working source in the chain:
// object store snapshot, local file, embedded data.
type Loader struct {
	store ObjectStore // nil = source disabled
	key   string
	path  string // empty = source disabled
	log   *logger.Logger
	met   *metrics.Metrics
}

// NewLoader creates a catalog loader. store and path may be zero values to
// disable those sources.
func NewLoader(store ObjectStore, key, path string, log *logger.Logger, met *metrics.Metrics) *Loader {
	return &Loader{store: store, key: key, path: path, log: log, met: met}
}

// Load reads the catalog from the source chain. It only fails when every
// source, including the embedded snapshot, is unusable.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if l.store != nil {
		data, etag, err := l.store.DownloadDecompressed(ctx, l.key)
		if err == nil {
			if cat, perr := l.build("object_store", data); perr == nil {
				l.log.WithField("etag", etag).WithField("records", cat.Len()).
					Infof("catalog loaded from object store")
				return cat, nil
			}
		} else {
			l.recordLoad("object_store", "error")
			l.log.WithError(err).Warnf("object store catalog unavailable, trying next source")
		}
	}

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err == nil {
			if cat, perr := l.build("file", data); perr == nil {
				l.log.WithField("path", l.path).WithField("records", cat.Len()).
					Infof("catalog loaded from file")
				return cat, nil
			}
		} else {
			l.recordLoad("file", "error")
			l.log.WithError(err).Warnf("catalog file unavailable, trying next source")
		}
	}

	cat, err := l.build("embedded", embeddedCourses)
	if err != nil {
		return nil, fmt.Errorf("%w: embedded snapshot: %v", apperrors.ErrCatalogLoad, err)
	}
	l.log.WithField("records", cat.Len()).Infof("catalog loaded from embedded snapshot")
	return cat, nil
}

func (l *Loader) build(source string, data []byte) (*Catalog, error) {
	records, skipped := Parse(data)
	for _, err := range skipped {
		l.log.WithError(err).WithField("source", source).Warnf("skipping catalog record")
	}
	if len(records) == 0 {
		l.recordLoad(source, "error")
		return nil, fmt.Errorf("%w: no usable records in %s source", apperrors.ErrCatalogLoad, source)
	}

	l.recordLoad(source, "success")
	if l.met != nil {
		l.met.SetCatalogRecords(len(records))
	}
	return New(records), nil
}

func (l *Loader) recordLoad(source, status string) {
	if l.met != nil {
		l.met.RecordCatalogLoad(source, status)
	}
}
