// Package docxtest builds small word-processing packages for tests.
package docxtest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Part is a single entry of a generated package.
type Part struct {
	Name string
	Body string
}

const (
	WordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

	CoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
<dc:title>Quarterly Report</dc:title>
<dc:subject>Finance</dc:subject>
<dc:creator>Ada Lovelace</dc:creator>
<cp:keywords>q1 budget</cp:keywords>
<dc:description>Draft for review</dc:description>
<cp:lastModifiedBy>Charles Babbage</cp:lastModifiedBy>
<cp:revision>7</cp:revision>
<cp:lastPrinted>2024-03-01</cp:lastPrinted>
<dcterms:created xsi:type="dcterms:W3CDTF">2024-03-05T10:15:30Z</dcterms:created>
<dcterms:modified xsi:type="dcterms:W3CDTF">2024-03-05T12:15:30+02:00</dcterms:modified>
</cp:coreProperties>`

	AppXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
<Template>Normal.dotm</Template>
<TotalTime>42</TotalTime>
<Pages>3</Pages>
<Words>512</Words>
<Characters>2900</Characters>
<Lines>40</Lines>
<Paragraphs>0</Paragraphs>
<Company>Analytical Engines Ltd</Company>
<Manager></Manager>
<HyperlinkBase>https://example.org/</HyperlinkBase>
</Properties>`

	DocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + WordNS + `>
<w:body>
<w:p><w:r><w:t>Hello</w:t></w:r></w:p>
<w:p><w:ins w:id="1" w:author="Ada"><w:r><w:t>new</w:t></w:r></w:ins></w:p>
<w:p><w:del w:id="2" w:author="Bob"><w:r><w:delText>old</w:delText></w:r></w:del></w:p>
<w:p><w:moveFrom w:id="3" w:author="Ada"><w:r><w:t>moved</w:t></w:r></w:moveFrom></w:p>
<w:p><w:pPr><w:pPrChange w:id="4" w:author="Ada"><w:pPr/></w:pPrChange></w:pPr>
<w:r><w:rPr><w:b/><w:rPrChange w:id="5" w:author="Bob"><w:rPr/></w:rPrChange></w:rPr><w:t>bold</w:t></w:r></w:p>
<w:sectPr/>
</w:body>
</w:document>`

	SettingsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings ` + WordNS + `>
<w:trackRevisions/>
<w:documentProtection w:edit="readOnly" w:enforcement="1"/>
<w:compat><w:compatSetting w:name="compatibilityMode" w:uri="http://schemas.microsoft.com/office/word" w:val="14"/></w:compat>
</w:settings>`

	CommentsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments ` + WordNS + `>
<w:comment w:id="0" w:author="Carol"><w:p><w:r><w:t>first</w:t></w:r></w:p></w:comment>
<w:comment w:id="1" w:author="Carol"><w:p><w:ins w:id="9" w:author="Carol"><w:r><w:t>second</w:t></w:r></w:ins></w:p></w:comment>
</w:comments>`
)

// DefaultParts returns a complete package; the main document comes first.
func DefaultParts() []Part {
	return []Part{
		{Name: "word/document.xml", Body: DocumentXML},
		{Name: "[Content_Types].xml", Body: `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{Name: "docProps/core.xml", Body: CoreXML},
		{Name: "docProps/app.xml", Body: AppXML},
		{Name: "word/settings.xml", Body: SettingsXML},
		{Name: "word/comments.xml", Body: CommentsXML},
	}
}

// Without returns parts minus the named entries.
func Without(parts []Part, names ...string) []Part {
	var out []Part
outer:
	for _, p := range parts {
		for _, n := range names {
			if p.Name == n {
				continue outer
			}
		}
		out = append(out, p)
	}
	return out
}

// With returns parts where entries of the same name are replaced by p, or p is appended.
func With(parts []Part, replacements ...Part) []Part {
	out := append([]Part(nil), parts...)
	for _, r := range replacements {
		replaced := false
		for i := range out {
			if out[i].Name == r.Name {
				out[i] = r
				replaced = true
			}
		}
		if !replaced {
			out = append(out, r)
		}
	}
	return out
}

// Bytes returns the zip encoded package.
func Bytes(t testing.TB, parts []Part) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.Name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(p.Body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Write stores the package in a temporary directory and returns its path.
func Write(t testing.TB, name string, parts []Part) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Bytes(t, parts), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
