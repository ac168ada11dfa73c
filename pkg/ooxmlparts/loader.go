// Package ooxmlparts maps the logical parts of a word-processing package to parsed element trees.
package ooxmlparts

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/beevik/etree"
	"github.com/johbar/docx-field-service/pkg/ooxmlzip"
	"github.com/johbar/docx-field-service/pkg/xmltree"
)

// Names of the parts inside the package.
const (
	CoreProperties = "docProps/core.xml"
	AppProperties  = "docProps/app.xml"
	MainDocument   = "word/document.xml"
	Comments       = "word/comments.xml"
	Settings       = "word/settings.xml"

	// ContentDir holds the main document and every part that may carry tracked changes
	ContentDir = "word/"
)

var (
	ErrPartAbsent = errors.New("part not present in package")
	ErrParse      = errors.New("part is not well-formed XML")
)

// Source is what the loader reads raw part data from; *ooxmlzip.Archive implements it.
type Source interface {
	ExtractNamed(name string) ([]byte, error)
}

type loaded struct {
	root *etree.Element
	err  error
}

// Loader parses parts on first use and hands out the same tree afterwards.
// A Loader is meant to live as long as a single request against one package.
type Loader struct {
	src         Source
	log         *slog.Logger
	mu          sync.Mutex
	parts       map[string]loaded
	extractions int
}

func NewLoader(src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{src: src, log: logger, parts: make(map[string]loaded)}
}

// Load returns the root element of the named part.
// The error wraps ErrPartAbsent if the package has no such entry
// and ErrParse if the entry is not well-formed XML.
func (l *Loader) Load(name string) (*etree.Element, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.parts[name]; ok {
		return p.root, p.err
	}
	p := l.load(name)
	l.parts[name] = p
	return p.root, p.err
}

func (l *Loader) load(name string) loaded {
	l.extractions++
	data, err := l.src.ExtractNamed(name)
	if errors.Is(err, ooxmlzip.ErrNotFound) {
		l.log.Debug("Part not present", "part", name)
		return loaded{err: fmt.Errorf("%w: %s", ErrPartAbsent, name)}
	}
	if err != nil {
		l.log.Warn("Could not extract part", "part", name, "err", err)
		return loaded{err: fmt.Errorf("extracting %s: %w", name, err)}
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		l.log.Warn("Could not parse part", "part", name, "err", err)
		return loaded{err: fmt.Errorf("%w: %s: %w", ErrParse, name, err)}
	}
	l.log.Debug("Part loaded", "part", name, "bytes", len(data))
	return loaded{root: root}
}

// Extractions returns how many times raw part data has been read from the source.
func (l *Loader) Extractions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.extractions
}
