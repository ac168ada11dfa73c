package fields

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/johbar/docx-field-service/internal/config"
	"github.com/johbar/docx-field-service/pkg/ooxmldate"
	"github.com/johbar/docx-field-service/pkg/ooxmlparts"
	"github.com/johbar/docx-field-service/pkg/ooxmlzip"
	"github.com/johbar/docx-field-service/pkg/revisions"
	"github.com/johbar/docx-field-service/pkg/xmltree"
)

var ErrUnsupportedExtension = errors.New("file extension not supported")

const (
	trackChangesOn  = "Activated"
	trackChangesOff = "Deactivated"
)

// element names in docProps/core.xml
var coreTags = map[Field]string{
	Title:          "dc:title",
	Subject:        "dc:subject",
	Creator:        "dc:creator",
	Keywords:       "cp:keywords",
	Description:    "dc:description",
	LastModifiedBy: "cp:lastModifiedBy",
	RevisionNumber: "cp:revision",
	Created:        "dcterms:created",
	Modified:       "dcterms:modified",
	LastPrinted:    "cp:lastPrinted",
}

// element names in docProps/app.xml
var appTags = map[Field]string{
	Manager:          "Manager",
	Company:          "Company",
	HyperlinkBase:    "HyperlinkBase",
	Template:         "Template",
	TotalEditingTime: "TotalTime",
	Pages:            "Pages",
	Paragraphs:       "Paragraphs",
	Lines:            "Lines",
	Words:            "Words",
	Characters:       "Characters",
}

// Resolver answers field requests for packages on disk or in memory.
// It holds no per-request state and may be used concurrently.
type Resolver struct {
	extensions  []string
	maxPartSize uint64
	location    *time.Location
	locale      ooxmldate.Locale
	log         *slog.Logger
}

func NewResolver(conf *config.Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Resolver{
		extensions:  []string{".docx"},
		maxPartSize: ooxmlzip.DefaultMaxEntrySize,
		location:    time.Local,
		locale:      ooxmldate.ISO,
		log:         logger,
	}
	if conf == nil {
		return r
	}
	if len(conf.Extensions) > 0 {
		r.extensions = conf.Extensions
	}
	if conf.MaxPartSizeBytes > 0 {
		r.maxPartSize = conf.MaxPartSizeBytes
	}
	if conf.Location != nil {
		r.location = conf.Location
	}
	r.locale = ooxmldate.LocaleFor(conf.Locale)
	return r
}

// Accepts reports whether path ends in one of the recognized extensions, ignoring case.
func (r *Resolver) Accepts(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range r.extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Value resolves a single field of the package at path.
// The package is opened for this call only and closed before Value returns.
func (r *Resolver) Value(path string, f Field, unit ooxmldate.Unit) Result {
	if _, ok := Lookup(f); !ok {
		return Result{Kind: KindNoMoreFields}
	}
	if !r.Accepts(path) {
		return empty(ErrUnsupportedExtension)
	}
	archive, err := ooxmlzip.Open(path, r.maxPartSize)
	if err != nil {
		r.log.Warn("Could not open package", "path", path, "err", err)
		return fileError(err)
	}
	defer archive.Close()
	return r.newRequest(archive).value(f, unit)
}

// Report resolves every field of the package at path, reading each part at most once.
func (r *Resolver) Report(path string, unit ooxmldate.Unit) (*Report, error) {
	if !r.Accepts(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}
	archive, err := ooxmlzip.Open(path, r.maxPartSize)
	if err != nil {
		return nil, err
	}
	defer archive.Close()
	return r.newRequest(archive).report(path, unit), nil
}

// ReportFromBytes is like Report for a package held in memory. name is only used for display.
func (r *Resolver) ReportFromBytes(name string, data []byte, unit ooxmldate.Unit) (*Report, error) {
	archive, err := ooxmlzip.NewFromBytes(data, r.maxPartSize)
	if err != nil {
		return nil, err
	}
	defer archive.Close()
	return r.newRequest(archive).report(name, unit), nil
}

// request is the state of one call against one opened package.
type request struct {
	*Resolver
	archive *ooxmlzip.Archive
	parts   *ooxmlparts.Loader
	counts  *revisions.Counts
}

func (r *Resolver) newRequest(archive *ooxmlzip.Archive) *request {
	return &request{
		Resolver: r,
		archive:  archive,
		parts:    ooxmlparts.NewLoader(archive, r.log),
	}
}

func (q *request) report(name string, unit ooxmldate.Unit) *Report {
	start := time.Now()
	rep := &Report{Path: name, Unit: unit.String(), Fields: make([]FieldValue, 0, fieldCount)}
	for f := Field(0); f < fieldCount; f++ {
		rep.Fields = append(rep.Fields, NewFieldValue(f, q.value(f, unit)))
	}
	if c, err := q.revisionCounts(); err == nil {
		rep.Counts = &c
	}
	q.log.Debug("Report created", "path", name, "parts", q.parts.Extractions(), "duration", time.Since(start))
	return rep
}

// partFailure maps a loader error to a result: malformed parts leave the field empty,
// everything else is a file error.
func partFailure(err error) Result {
	if errors.Is(err, ooxmlparts.ErrParse) {
		return empty(err)
	}
	return fileError(err)
}

func (q *request) value(f Field, unit ooxmldate.Unit) Result {
	switch f {
	case Title, Subject, Creator, Keywords, Description, LastModifiedBy:
		return q.text(ooxmlparts.CoreProperties, coreTags[f])
	case Manager, Company, HyperlinkBase, Template:
		return q.text(ooxmlparts.AppProperties, appTags[f])
	case Created, Modified, LastPrinted:
		return q.date(coreTags[f], unit)
	case RevisionNumber:
		return q.number(ooxmlparts.CoreProperties, coreTags[f], false)
	case TotalEditingTime:
		return q.number(ooxmlparts.AppProperties, appTags[f], false)
	case Pages, Paragraphs, Lines, Words, Characters:
		return q.number(ooxmlparts.AppProperties, appTags[f], true)
	case CompatibilityMode:
		return q.setting(func(s *etree.Element) Result { return boolResult(revisions.CompatibilityMode(s)) })
	case AutoUpdateStyles:
		return q.setting(func(s *etree.Element) Result { return boolResult(revisions.AutoUpdateStyles(s)) })
	case FilesAnonymized:
		return q.setting(func(s *etree.Element) Result { return boolResult(revisions.FilesAnonymized(s)) })
	case DocumentProtection:
		return q.setting(func(s *etree.Element) Result { return stringResult(string(revisions.Protection(s))) })
	case TrackChanges:
		return q.trackChanges()
	case HiddenText:
		return q.document(func(d *etree.Element) Result { return boolResult(revisions.HasHiddenText(d)) })
	case TrackedChangesPresent:
		return q.document(func(d *etree.Element) Result { return boolResult(revisions.HasTrackedChanges(d)) })
	case CommentCount:
		return q.comments()
	case TrackedChangesAuthors:
		return q.authors()
	case TotalRevisions, TotalInsertions, TotalDeletions, TotalMoves, TotalFormattingChanges:
		c, err := q.revisionCounts()
		if err != nil {
			return partFailure(err)
		}
		return intResult(pickCount(c, f))
	}
	return Result{Kind: KindNoMoreFields}
}

func pickCount(c revisions.Counts, f Field) int {
	switch f {
	case TotalInsertions:
		return c.Insertions
	case TotalDeletions:
		return c.Deletions
	case TotalMoves:
		return c.Moves
	case TotalFormattingChanges:
		return c.FormattingChanges
	}
	return c.TotalRevisions
}

func (q *request) text(part, tag string) Result {
	root, err := q.parts.Load(part)
	if err != nil {
		return partFailure(err)
	}
	return stringResult(xmltree.TextOf(xmltree.FindFirstDescendant(root, tag)))
}

// number reads an integer element; a missing element counts as 0. With zeroIsEmpty
// a value of 0 is reported as empty, as done for the document statistics.
func (q *request) number(part, tag string, zeroIsEmpty bool) Result {
	root, err := q.parts.Load(part)
	if err != nil {
		return partFailure(err)
	}
	n := xmltree.IntOf(xmltree.FindFirstDescendant(root, tag))
	if n == 0 && zeroIsEmpty {
		return empty(nil)
	}
	return intResult(n)
}

// date parses a core property date. The raw unit yields the instant, every other unit
// a formatted string in the configured zone and locale.
func (q *request) date(tag string, unit ooxmldate.Unit) Result {
	root, err := q.parts.Load(ooxmlparts.CoreProperties)
	if err != nil {
		return partFailure(err)
	}
	text := xmltree.TextOf(xmltree.FindFirstDescendant(root, tag))
	if text == "" {
		return empty(nil)
	}
	t, err := ooxmldate.Parse(text)
	if err != nil {
		q.log.Debug("Invalid date", "tag", tag, "err", err)
		return empty(err)
	}
	if unit == ooxmldate.UnitRaw {
		return Result{Kind: KindDateTime, Time: t}
	}
	s, err := ooxmldate.Format(t, unit, q.location, q.locale)
	if err != nil {
		return empty(err)
	}
	return Result{Kind: KindWideString, Text: s}
}

func (q *request) setting(fn func(*etree.Element) Result) Result {
	settings, err := q.parts.Load(ooxmlparts.Settings)
	if err != nil {
		return partFailure(err)
	}
	return fn(settings)
}

func (q *request) document(fn func(*etree.Element) Result) Result {
	doc, err := q.parts.Load(ooxmlparts.MainDocument)
	if err != nil {
		return partFailure(err)
	}
	return fn(doc)
}

// trackChanges reports the switch as deactivated if there are no settings at all.
func (q *request) trackChanges() Result {
	settings, err := q.parts.Load(ooxmlparts.Settings)
	switch {
	case errors.Is(err, ooxmlparts.ErrPartAbsent):
		return stringResult(trackChangesOff)
	case err != nil:
		return partFailure(err)
	case revisions.TrackChangesEnabled(settings):
		return stringResult(trackChangesOn)
	}
	return stringResult(trackChangesOff)
}

// comments counts zero if the package has no comments part.
func (q *request) comments() Result {
	root, err := q.parts.Load(ooxmlparts.Comments)
	switch {
	case errors.Is(err, ooxmlparts.ErrPartAbsent):
		return intResult(0)
	case err != nil:
		return partFailure(err)
	}
	return intResult(revisions.CountComments(root))
}

// authors scans every XML part below word/. Parts that can't be loaded are skipped.
func (q *request) authors() Result {
	var roots []*etree.Element
	for _, e := range q.archive.ListEntriesUnder(ooxmlparts.ContentDir, ".xml") {
		root, err := q.parts.Load(e.Name)
		if err != nil {
			continue
		}
		roots = append(roots, root)
	}
	return stringResult(revisions.JoinAuthors(revisions.CollectAuthors(roots...)))
}

func (q *request) revisionCounts() (revisions.Counts, error) {
	if q.counts != nil {
		return *q.counts, nil
	}
	doc, err := q.parts.Load(ooxmlparts.MainDocument)
	if err != nil {
		return revisions.Counts{}, err
	}
	c := revisions.CountTrackedChanges(doc)
	q.counts = &c
	return c, nil
}
