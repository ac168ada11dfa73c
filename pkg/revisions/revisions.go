// Package revisions answers questions about tracked changes, comments and
// settings of a WordprocessingML document.
package revisions

import (
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/johbar/docx-field-service/pkg/xmltree"
)

const (
	tagInsertion       = "w:ins"
	tagDeletion        = "w:del"
	tagMoveFrom        = "w:moveFrom"
	tagRunPropChange   = "w:rPrChange"
	tagParaPropChange  = "w:pPrChange"
	tagSectPropChange  = "w:sectPrChange"
	tagTablePropChange = "w:tblPrChange"
	attrAuthor         = "w:author"
)

// Counts holds the number of tracked changes per category.
type Counts struct {
	Insertions        int `json:"insertions"`
	Deletions         int `json:"deletions"`
	Moves             int `json:"moves"`
	FormattingChanges int `json:"formattingChanges"`
	TotalRevisions    int `json:"totalRevisions"`
}

func isRevisionMarker(e *etree.Element) bool {
	switch e.FullTag() {
	case tagInsertion, tagDeletion, tagRunPropChange, tagParaPropChange, tagSectPropChange, tagTablePropChange:
		return true
	}
	return false
}

// HasTrackedChanges reports whether the document contains any insertion, deletion
// or property change marker. It stops at the first one.
func HasTrackedChanges(doc *etree.Element) bool {
	return xmltree.AnyDescendant(doc, isRevisionMarker)
}

// CountTrackedChanges counts markers in a single traversal.
// Moves are only counted by their move-from marker; insertions and deletions
// that belong to a move are not told apart from plain ones.
func CountTrackedChanges(doc *etree.Element) Counts {
	var c Counts
	xmltree.Walk(doc, func(e *etree.Element) bool {
		switch e.FullTag() {
		case tagInsertion:
			c.Insertions++
		case tagDeletion:
			c.Deletions++
		case tagMoveFrom:
			c.Moves++
		case tagRunPropChange, tagParaPropChange:
			c.FormattingChanges++
		}
		return true
	})
	c.TotalRevisions = c.Insertions + c.Deletions + c.Moves + c.FormattingChanges
	return c
}

// CollectAuthors returns the sorted, distinct authors of all insertions and deletions in parts.
// Revisions without an author name are ignored.
func CollectAuthors(parts ...*etree.Element) []string {
	seen := make(map[string]struct{})
	for _, root := range parts {
		xmltree.ForEachDescendant(root, func(e *etree.Element) bool {
			return xmltree.HasTag(e, tagInsertion) || xmltree.HasTag(e, tagDeletion)
		}, func(e *etree.Element) {
			if author, _ := xmltree.Attribute(e, attrAuthor); author != "" {
				seen[author] = struct{}{}
			}
		})
	}
	authors := make([]string, 0, len(seen))
	for a := range seen {
		authors = append(authors, a)
	}
	slices.Sort(authors)
	return authors
}

// JoinAuthors renders authors as a comma separated list.
func JoinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}

// HasHiddenText reports whether a run directly inside a body paragraph is formatted as hidden.
// Runs nested deeper (tables, hyperlinks, insertions) are not inspected.
func HasHiddenText(doc *etree.Element) bool {
	if !xmltree.HasTag(doc, "w:document") {
		return false
	}
	body := xmltree.FirstChild(doc, "w:body")
	for _, para := range xmltree.DirectChildren(body, "w:p") {
		for _, run := range xmltree.DirectChildren(para, "w:r") {
			rPr := xmltree.FirstChild(run, "w:rPr")
			if xmltree.FirstChild(rPr, "w:vanish") != nil {
				return true
			}
		}
	}
	return false
}

func rootHasChildTagContaining(settings *etree.Element, substr string) bool {
	if settings == nil {
		return false
	}
	for _, child := range settings.ChildElements() {
		if xmltree.TagContains(child, substr) {
			return true
		}
	}
	return false
}

// TrackChangesEnabled reports whether revision tracking is switched on.
func TrackChangesEnabled(settings *etree.Element) bool {
	return rootHasChildTagContaining(settings, "trackRevisions")
}

// AutoUpdateStyles reports whether styles are updated from the attached template on open.
func AutoUpdateStyles(settings *etree.Element) bool {
	return rootHasChildTagContaining(settings, "linkStyles")
}

// FilesAnonymized reports whether personal information is removed on save.
func FilesAnonymized(settings *etree.Element) bool {
	return rootHasChildTagContaining(settings, "removePersonalInformation")
}

// LastCompatibilityModeVersion is the highest compatibility mode value of the
// pre-2013 file format generation.
const LastCompatibilityModeVersion = 14

// CompatibilityMode reports whether the document targets a file format older than Word 2013.
// Every compatibility setting is inspected; the first one named compatibilityMode decides.
func CompatibilityMode(settings *etree.Element) bool {
	if !xmltree.HasTag(settings, "w:settings") {
		return false
	}
	compat := xmltree.FirstChild(settings, "w:compat")
	for _, setting := range xmltree.DirectChildren(compat, "w:compatSetting") {
		if name, _ := xmltree.Attribute(setting, "w:name"); name != "compatibilityMode" {
			continue
		}
		val, ok := xmltree.Attribute(setting, "w:val")
		if !ok {
			return false
		}
		version, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return false
		}
		return version <= LastCompatibilityModeVersion
	}
	return false
}

// ProtectionMode is the kind of editing restriction enforced on a document.
type ProtectionMode string

const (
	NoProtection       ProtectionMode = "No protection"
	ReadOnly           ProtectionMode = "Read-Only"
	Forms              ProtectionMode = "Forms"
	CommentsOnly       ProtectionMode = "Comments"
	TrackedChangesOnly ProtectionMode = "Tracked Changes"
	UnknownProtection  ProtectionMode = "Unknown protection type"
)

var editModes = map[string]ProtectionMode{
	"readOnly":       ReadOnly,
	"forms":          Forms,
	"comments":       CommentsOnly,
	"trackedChanges": TrackedChangesOnly,
}

// onOff parses the boolean representation used by WordprocessingML attributes.
func onOff(v string) bool {
	switch v {
	case "1", "true", "on":
		return true
	}
	return false
}

// Protection returns the enforced protection mode of the document.
func Protection(settings *etree.Element) ProtectionMode {
	prot := xmltree.FirstChild(settings, "w:documentProtection")
	if prot == nil {
		return NoProtection
	}
	if enforcement, _ := xmltree.Attribute(prot, "w:enforcement"); !onOff(enforcement) {
		return NoProtection
	}
	edit, ok := xmltree.Attribute(prot, "w:edit")
	if !ok {
		return NoProtection
	}
	if mode, ok := editModes[edit]; ok {
		return mode
	}
	return UnknownProtection
}

// CountComments returns the number of top-level comments. A missing part has none.
func CountComments(comments *etree.Element) int {
	return len(xmltree.DirectChildren(comments, "w:comment"))
}
