// Package service exposes the field resolver over HTTP, NATS and the command line.
package service

import (
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/johbar/docx-field-service/internal/cache"
	"github.com/johbar/docx-field-service/internal/config"
	"github.com/johbar/docx-field-service/internal/fields"
	"github.com/johbar/docx-field-service/pkg/ooxmldate"
)

var (
	valueRequests  = expvar.NewInt("valueRequests")
	reportRequests = expvar.NewInt("reportRequests")
	cacheHits      = expvar.NewInt("cacheHits")
	failedRequests = expvar.NewInt("failedRequests")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValueParams select a single field of a file on the server's filesystem.
type ValueParams struct {
	Path  string `form:"path" json:"path" validate:"required"`
	Field *int   `form:"field" json:"field" validate:"required,gte=0"`
	Unit  int    `form:"unit" json:"unit" validate:"gte=0,lte=12"`
}

// ReportParams select all fields of a file on the server's filesystem.
type ReportParams struct {
	Path string `form:"path" json:"path" validate:"required"`
	Unit int    `form:"unit" json:"unit" validate:"gte=0,lte=12"`
	// Ignore cached report
	NoCache bool `form:"noCache" json:"noCache"`
}

// UploadParams apply to packages sent in a request body.
type UploadParams struct {
	Unit int `form:"unit" json:"unit" validate:"gte=0,lte=12"`
}

type cachedReport struct {
	key    string
	report *fields.Report
}

type Service struct {
	resolver  *fields.Resolver
	cache     cache.Cache
	cacheNop  bool
	conf      *config.Config
	log       *slog.Logger
	saveChan  chan cachedReport
	saverDone chan struct{}
	// guards saveChan against sends after Close
	mu     sync.RWMutex
	closed bool
}

func New(conf *config.Config, resolver *fields.Resolver, reportCache cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if reportCache == nil {
		reportCache = &cache.NopCache{}
	}
	if conf == nil {
		conf = &config.Config{}
	}
	s := &Service{
		resolver:  resolver,
		cache:     reportCache,
		conf:      conf,
		log:       logger,
		saveChan:  make(chan cachedReport, 100),
		saverDone: make(chan struct{}),
	}
	_, s.cacheNop = reportCache.(*cache.NopCache)
	go s.saveReports()
	return s
}

// Close waits for pending cache writes. Reports created afterwards are not cached.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.saveChan)
	}
	s.mu.Unlock()
	<-s.saverDone
}

func (s *Service) saveReports() {
	defer close(s.saverDone)
	for r := range s.saveChan {
		if s.cacheNop {
			continue
		}
		for i := 0; i <= 5; i++ {
			err := s.cache.Save(r.key, r.report)
			if err == nil {
				s.log.Debug("Saved report in NATS key-value bucket", "path", r.report.Path, "key", r.key)
				break
			}
			s.log.Warn("Could not save report to cache", "retries", i, "path", r.report.Path, "err", err)
		}
	}
}

// Value resolves one field.
func (s *Service) Value(p ValueParams) (fields.FieldValue, error) {
	valueRequests.Add(1)
	if err := validate.Struct(p); err != nil {
		failedRequests.Add(1)
		return fields.FieldValue{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	f := fields.Field(*p.Field)
	res := s.resolver.Value(p.Path, f, ooxmldate.Unit(p.Unit))
	switch res.Kind {
	case fields.KindNoMoreFields:
		return fields.FieldValue{}, fmt.Errorf("%w: %d", ErrNoSuchField, *p.Field)
	case fields.KindFileError:
		failedRequests.Add(1)
		s.log.Warn("Field request failed", "path", p.Path, "field", f, "err", res.Err)
	}
	return fields.NewFieldValue(f, res), nil
}

// Report resolves all fields of a file, consulting the cache first.
func (s *Service) Report(p ReportParams) (*fields.Report, error) {
	reportRequests.Add(1)
	if err := validate.Struct(p); err != nil {
		failedRequests.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if !s.resolver.Accepts(p.Path) {
		return nil, fmt.Errorf("%w: %s", fields.ErrUnsupportedExtension, p.Path)
	}
	unit := ooxmldate.Unit(p.Unit)
	info, err := os.Stat(p.Path)
	if err != nil {
		failedRequests.Add(1)
		return nil, err
	}
	key := cache.Key(p.Path, info, unit)
	if rep := s.fromCache(key, p.NoCache); rep != nil {
		return rep, nil
	}
	rep, err := s.resolver.Report(p.Path, unit)
	if err != nil {
		failedRequests.Add(1)
		s.log.Warn("Report failed", "path", p.Path, "err", err)
		return nil, err
	}
	s.toCache(key, rep)
	return rep, nil
}

// ReportFromBytes resolves all fields of an uploaded package.
func (s *Service) ReportFromBytes(name string, data []byte, p UploadParams) (*fields.Report, error) {
	reportRequests.Add(1)
	if err := validate.Struct(p); err != nil {
		failedRequests.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	unit := ooxmldate.Unit(p.Unit)
	key := cache.KeyForData(data, unit)
	if rep := s.fromCache(key, false); rep != nil {
		rep.Path = name
		return rep, nil
	}
	rep, err := s.resolver.ReportFromBytes(name, data, unit)
	if err != nil {
		failedRequests.Add(1)
		return nil, err
	}
	s.toCache(key, rep)
	return rep, nil
}

func (s *Service) fromCache(key string, noCache bool) *fields.Report {
	if noCache || s.cacheNop {
		return nil
	}
	rep, err := s.cache.Get(key)
	if err != nil {
		s.log.Error("Could not get report from cache", "key", key, "err", err)
		return nil
	}
	if rep != nil {
		cacheHits.Add(1)
		s.log.Debug("Report served from cache", "key", key)
	}
	return rep
}

func (s *Service) toCache(key string, rep *fields.Report) {
	if s.cacheNop {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Debug("Service closed, report not cached", "key", key)
		return
	}
	s.saveChan <- cachedReport{key: key, report: rep}
}

var (
	ErrInvalidParams = errors.New("invalid parameters")
	ErrNoSuchField   = errors.New("no such field")
)
