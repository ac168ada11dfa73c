package fields

import "github.com/johbar/docx-field-service/pkg/revisions"

// FieldValue is one resolved field in a Report.
type FieldValue struct {
	ID    Field  `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
	// FileTime is set for instants only.
	FileTime int64  `json:"filetime,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report holds all fields of one package.
type Report struct {
	Path   string            `json:"path"`
	Unit   string            `json:"unit"`
	Fields []FieldValue      `json:"fields"`
	Counts *revisions.Counts `json:"counts,omitempty"`
}

// NewFieldValue converts a result for display.
func NewFieldValue(f Field, r Result) FieldValue {
	fv := FieldValue{ID: f, Name: f.String(), Kind: r.Kind.String(), Value: r.String()}
	if r.Kind == KindDateTime {
		fv.FileTime = r.FileTime()
	}
	if r.Err != nil {
		fv.Error = r.Err.Error()
	}
	return fv
}

// Get returns the value of f.
func (r *Report) Get(f Field) (FieldValue, bool) {
	for _, fv := range r.Fields {
		if fv.ID == f {
			return fv, true
		}
	}
	return FieldValue{}, false
}
