// Package fields maps field identifiers to the values extracted from a word-processing package.
package fields

import (
	"fmt"

	"github.com/johbar/docx-field-service/pkg/ooxmldate"
)

// Field identifies a value that can be requested for a document.
// Identifiers are contiguous and start at 0.
type Field int

const (
	Title Field = iota
	Subject
	Creator
	Manager
	Company
	Keywords
	Description
	HyperlinkBase
	Template
	Created
	Modified
	LastPrinted
	LastModifiedBy
	RevisionNumber
	TotalEditingTime
	Pages
	Paragraphs
	Lines
	Words
	Characters
	CompatibilityMode
	HiddenText
	CommentCount
	DocumentProtection
	AutoUpdateStyles
	FilesAnonymized
	TrackedChangesPresent
	TrackChanges
	TrackedChangesAuthors
	TotalRevisions
	TotalInsertions
	TotalDeletions
	TotalMoves
	TotalFormattingChanges
	fieldCount
)

// Kind is the type tag of a field or result. The numeric values are the
// ones used by file manager content plugins.
type Kind int

const (
	KindFileError    Kind = -2
	KindFieldEmpty   Kind = -3
	KindNoMoreFields Kind = 0
	KindInt          Kind = 1
	KindBool         Kind = 6
	KindString       Kind = 8
	KindDateTime     Kind = 10
	KindWideString   Kind = 11
)

func (k Kind) String() string {
	switch k {
	case KindFileError:
		return "file error"
	case KindFieldEmpty:
		return "field empty"
	case KindNoMoreFields:
		return "no more fields"
	case KindInt:
		return "int32"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindWideString:
		return "wide string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Descriptor describes a field: display name, unit labels separated by "|" and type.
type Descriptor struct {
	ID    Field  `json:"id"`
	Name  string `json:"name"`
	Units string `json:"units,omitempty"`
	Kind  Kind   `json:"kind"`
}

var dateUnits = ooxmldate.UnitLabels()

var descriptors = [fieldCount]Descriptor{
	{Title, "Document Title", "", KindString},
	{Subject, "Subject", "", KindString},
	{Creator, "Author", "", KindString},
	{Manager, "Manager", "", KindString},
	{Company, "Company", "", KindString},
	{Keywords, "Keywords", "", KindString},
	{Description, "Comments", "", KindString},
	{HyperlinkBase, "Hyperlink base", "", KindString},
	{Template, "Template", "", KindString},
	{Created, "Created", dateUnits, KindDateTime},
	{Modified, "Modified", dateUnits, KindDateTime},
	{LastPrinted, "Printed", dateUnits, KindDateTime},
	{LastModifiedBy, "Last saved by", "", KindString},
	{RevisionNumber, "Revision number", "", KindInt},
	{TotalEditingTime, "Total editing time", "min", KindInt},
	{Pages, "Pages", "", KindInt},
	{Paragraphs, "Paragraphs", "", KindInt},
	{Lines, "Lines", "", KindInt},
	{Words, "Words", "", KindInt},
	{Characters, "Characters", "", KindInt},
	{CompatibilityMode, "Compatibility mode", "", KindBool},
	{HiddenText, "Hidden text", "", KindBool},
	{CommentCount, "Number of comments", "", KindInt},
	{DocumentProtection, "Document Protection", "", KindString},
	{AutoUpdateStyles, "Auto Update Styles", "", KindBool},
	{FilesAnonymized, "Files Anonymised", "", KindBool},
	{TrackedChangesPresent, "Tracked Changes Present in Document", "", KindBool},
	{TrackChanges, "Track Changes", "", KindString},
	{TrackedChangesAuthors, "Tracked Changes Authors", "", KindString},
	{TotalRevisions, "Total Revisions", "", KindInt},
	{TotalInsertions, "Total Insertions", "", KindInt},
	{TotalDeletions, "Total Deletions", "", KindInt},
	{TotalMoves, "Total Moves", "", KindInt},
	{TotalFormattingChanges, "Total Formatting Changes", "", KindInt},
}

// Lookup returns the descriptor of f. ok is false past the last field.
func Lookup(f Field) (d Descriptor, ok bool) {
	if f < 0 || f >= fieldCount {
		return Descriptor{}, false
	}
	return descriptors[f], true
}

// Descriptors returns a copy of the field table in identifier order.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), descriptors[:]...)
}

func (f Field) String() string {
	if d, ok := Lookup(f); ok {
		return d.Name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// IsDate reports whether f accepts a display unit.
func (f Field) IsDate() bool {
	d, ok := Lookup(f)
	return ok && d.Kind == KindDateTime
}
