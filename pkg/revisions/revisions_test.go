package revisions

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/johbar/docx-field-service/internal/docxtest"
	"github.com/johbar/docx-field-service/pkg/xmltree"
)

func parse(t *testing.T, s string) *etree.Element {
	t.Helper()
	root, err := xmltree.Parse([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func document(body string) string {
	return `<w:document ` + docxtest.WordNS + `><w:body>` + body + `</w:body></w:document>`
}

func settings(children string) string {
	return `<w:settings ` + docxtest.WordNS + `>` + children + `</w:settings>`
}

func TestCountTrackedChanges(t *testing.T) {
	got := CountTrackedChanges(parse(t, docxtest.DocumentXML))
	want := Counts{Insertions: 1, Deletions: 1, Moves: 1, FormattingChanges: 2, TotalRevisions: 5}
	if got != want {
		t.Errorf("CountTrackedChanges() = %+v, want %+v", got, want)
	}
}

func TestCountsAgreeWithPresence(t *testing.T) {
	tests := []struct {
		n, m, k, j int
		extra      string
	}{
		{0, 0, 0, 0, ""},
		{3, 0, 0, 0, ""},
		{0, 2, 1, 0, ""},
		{1, 1, 1, 4, ""},
		{0, 0, 0, 0, `<w:sectPr><w:sectPrChange w:id="1"/></w:sectPr>`},
		{0, 0, 2, 0, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d-%d-%d", tt.n, tt.m, tt.k, tt.j), func(t *testing.T) {
			var b strings.Builder
			for range tt.n {
				b.WriteString(`<w:p><w:ins w:author="a"><w:r/></w:ins></w:p>`)
			}
			for range tt.m {
				b.WriteString(`<w:p><w:del w:author="b"><w:r/></w:del></w:p>`)
			}
			for range tt.k {
				b.WriteString(`<w:p><w:moveFrom w:author="c"><w:r/></w:moveFrom><w:moveTo w:author="c"/></w:p>`)
			}
			for i := range tt.j {
				if i%2 == 0 {
					b.WriteString(`<w:p><w:r><w:rPr><w:rPrChange/></w:rPr></w:r></w:p>`)
				} else {
					b.WriteString(`<w:p><w:pPr><w:pPrChange/></w:pPr></w:p>`)
				}
			}
			b.WriteString(tt.extra)
			doc := parse(t, document(b.String()))
			c := CountTrackedChanges(doc)
			want := Counts{tt.n, tt.m, tt.k, tt.j, tt.n + tt.m + tt.k + tt.j}
			if c != want {
				t.Errorf("got %+v, want %+v", c, want)
			}
			presence := tt.n+tt.m+tt.j > 0 || tt.extra != ""
			if HasTrackedChanges(doc) != presence {
				t.Errorf("HasTrackedChanges() = %v, want %v", !presence, presence)
			}
		})
	}
}

func TestCollectAuthors(t *testing.T) {
	doc := parse(t, docxtest.DocumentXML)
	comments := parse(t, docxtest.CommentsXML)
	footnotes := parse(t, `<w:footnotes `+docxtest.WordNS+`><w:ins w:author="ada"/><w:del w:author="Bob"/><w:moveFrom w:author="Zed"/></w:footnotes>`)

	want := []string{"Ada", "Bob", "Carol", "ada"}
	got := CollectAuthors(doc, comments, footnotes)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectAuthors() = %v, want %v", got, want)
	}
	// independent of the order the parts are visited in
	if again := CollectAuthors(footnotes, comments, doc); !reflect.DeepEqual(again, want) {
		t.Errorf("CollectAuthors() in reverse order = %v, want %v", again, want)
	}
	if s := JoinAuthors(got); s != "Ada, Bob, Carol, ada" {
		t.Errorf("JoinAuthors() = %q", s)
	}
	if len(CollectAuthors(nil)) != 0 {
		t.Error("expected no authors for nil tree")
	}
	unnamed := parse(t, document(`<w:p><w:ins w:author=""/><w:del w:author="Ann"/><w:ins/></w:p>`))
	if s := JoinAuthors(CollectAuthors(unnamed)); s != "Ann" {
		t.Errorf("JoinAuthors() with unnamed revisions = %q, want %q", s, "Ann")
	}
}

func TestHasHiddenText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want bool
	}{
		{"none", document(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>x</w:t></w:r></w:p>`), false},
		{"direct", document(`<w:p><w:r><w:rPr><w:vanish/></w:rPr><w:t>x</w:t></w:r></w:p>`), true},
		{"in table", document(`<w:tbl><w:tr><w:tc><w:p><w:r><w:rPr><w:vanish/></w:rPr></w:r></w:p></w:tc></w:tr></w:tbl>`), false},
		{"in hyperlink", document(`<w:p><w:hyperlink><w:r><w:rPr><w:vanish/></w:rPr></w:r></w:hyperlink></w:p>`), false},
		{"nested in rPr", document(`<w:p><w:r><w:rPr><w:rPrChange><w:vanish/></w:rPrChange></w:rPr></w:r></w:p>`), false},
		{"wrong root", `<w:comments ` + docxtest.WordNS + `><w:body><w:p><w:r><w:rPr><w:vanish/></w:rPr></w:r></w:p></w:body></w:comments>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasHiddenText(parse(t, tt.xml)); got != tt.want {
				t.Errorf("HasHiddenText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettingsFlags(t *testing.T) {
	s := parse(t, settings(`<w:trackRevisions/><w:linkStyles/><w:removePersonalInformation/>`))
	if !TrackChangesEnabled(s) || !AutoUpdateStyles(s) || !FilesAnonymized(s) {
		t.Error("expected all flags to be set")
	}
	empty := parse(t, settings(`<w:zoom w:percent="100"/>`))
	if TrackChangesEnabled(empty) || AutoUpdateStyles(empty) || FilesAnonymized(empty) {
		t.Error("expected no flags to be set")
	}
	// flags are only looked up among direct children
	nested := parse(t, settings(`<w:compat><w:trackRevisions/></w:compat>`))
	if TrackChangesEnabled(nested) {
		t.Error("nested trackRevisions must not count")
	}
	// any prefix matches
	prefixed := parse(t, settings(`<w15:trackRevisions/>`))
	if !TrackChangesEnabled(prefixed) {
		t.Error("expected substring match to ignore the prefix")
	}
	if TrackChangesEnabled(nil) {
		t.Error("nil settings must report false")
	}
}

func TestCompatibilityMode(t *testing.T) {
	setting := func(name, val string) string {
		return settings(`<w:compat><w:compatSetting w:name="` + name + `" w:val="` + val + `"/></w:compat>`)
	}
	tests := []struct {
		name string
		xml  string
		want bool
	}{
		{"word 2010", setting("compatibilityMode", "14"), true},
		{"word 2007", setting("compatibilityMode", "12"), true},
		{"word 2013", setting("compatibilityMode", "15"), false},
		{"not numeric", setting("compatibilityMode", "abc"), false},
		{"no val", settings(`<w:compat><w:compatSetting w:name="compatibilityMode"/></w:compat>`), false},
		{"no setting", settings(`<w:compat/>`), false},
		{"no compat", settings(``), false},
		{"other setting only", setting("overrideTableStyleFontSizeAndJustification", "1"), false},
		{"not first sibling", settings(`<w:compat>` +
			`<w:compatSetting w:name="overrideTableStyleFontSizeAndJustification" w:val="1"/>` +
			`<w:compatSetting w:name="compatibilityMode" w:val="14"/></w:compat>`), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompatibilityMode(parse(t, tt.xml)); got != tt.want {
				t.Errorf("CompatibilityMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProtection(t *testing.T) {
	prot := func(attrs string) string {
		return settings(`<w:documentProtection ` + attrs + `/>`)
	}
	tests := []struct {
		name string
		xml  string
		want ProtectionMode
	}{
		{"read only", prot(`w:edit="readOnly" w:enforcement="1"`), ReadOnly},
		{"forms", prot(`w:edit="forms" w:enforcement="1"`), Forms},
		{"comments", prot(`w:edit="comments" w:enforcement="true"`), CommentsOnly},
		{"tracked changes", prot(`w:edit="trackedChanges" w:enforcement="1"`), TrackedChangesOnly},
		{"unknown edit", prot(`w:edit="none" w:enforcement="1"`), UnknownProtection},
		{"missing edit", prot(`w:enforcement="1"`), NoProtection},
		{"not enforced", prot(`w:edit="readOnly" w:enforcement="0"`), NoProtection},
		{"no enforcement", prot(`w:edit="readOnly"`), NoProtection},
		{"no element", settings(`<w:zoom/>`), NoProtection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Protection(parse(t, tt.xml)); got != tt.want {
				t.Errorf("Protection() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountComments(t *testing.T) {
	if n := CountComments(parse(t, docxtest.CommentsXML)); n != 2 {
		t.Errorf("expected 2 comments, got %d", n)
	}
	if n := CountComments(nil); n != 0 {
		t.Errorf("expected 0 comments for a missing part, got %d", n)
	}
}
