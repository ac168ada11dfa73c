package xmltree

import (
	"reflect"
	"testing"

	"github.com/beevik/etree"
)

const sample = `<?xml version="1.0"?>
<w:document xmlns:w="urn:w">
<w:body>
<w:p w:rsid="01"><w:r><w:t>one</w:t></w:r><w:r><w:t>two</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p w:rsid="02"><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p w:rsid="03"/>
<w:count> 42 </w:count>
<w:bad>4x2</w:bad>
</w:body>
</w:document>`

func mustParse(t *testing.T, s string) *etree.Element {
	t.Helper()
	root, err := Parse([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestParse(t *testing.T) {
	root := mustParse(t, sample)
	if !HasTag(root, "w:document") {
		t.Errorf("expected root w:document, got %s", root.FullTag())
	}
	for _, in := range []string{"", "not xml <<<", "<?xml version=\"1.0\"?>", "<a/><b/>"} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("expected error parsing %q", in)
		}
	}
}

func TestPreOrderDocumentOrder(t *testing.T) {
	root := mustParse(t, sample)
	var rsids []string
	ForEachDescendant(root, func(e *etree.Element) bool { return HasTag(e, "w:p") }, func(e *etree.Element) {
		v, _ := Attribute(e, "w:rsid")
		rsids = append(rsids, v)
	})
	want := []string{"01", "02", "03"}
	if !reflect.DeepEqual(rsids, want) {
		t.Errorf("expected %v, got %v", want, rsids)
	}
}

func TestFindFirstDescendant(t *testing.T) {
	root := mustParse(t, sample)
	if got := TextOf(FindFirstDescendant(root, "w:t")); got != "one" {
		t.Errorf("expected first w:t to be 'one', got %q", got)
	}
	if FindFirstDescendant(root, "w:document") != root {
		t.Error("expected the root itself to be part of the search")
	}
	if FindFirstDescendant(root, "w:missing") != nil {
		t.Error("expected nil for missing tag")
	}
}

func TestDirectChildren(t *testing.T) {
	root := mustParse(t, sample)
	body := FirstChild(root, "w:body")
	if body == nil {
		t.Fatal("expected w:body")
	}
	if n := len(DirectChildren(body, "w:p")); n != 2 {
		t.Errorf("expected 2 direct paragraphs, got %d", n)
	}
	if DirectChildren(nil, "w:p") != nil {
		t.Error("expected nil for nil node")
	}
}

func TestAnyDescendantStopsEarly(t *testing.T) {
	root := mustParse(t, sample)
	visited := 0
	found := AnyDescendant(root, func(e *etree.Element) bool {
		visited++
		return HasTag(e, "w:r")
	})
	if !found {
		t.Fatal("expected a match")
	}
	// w:document, w:body, w:p, w:r
	if visited != 4 {
		t.Errorf("expected traversal to stop after 4 elements, visited %d", visited)
	}
}

func TestTextAndInt(t *testing.T) {
	root := mustParse(t, sample)
	tests := []struct {
		tag  string
		text string
		num  int
	}{
		{"w:count", " 42 ", 42},
		{"w:bad", "4x2", 0},
		{"w:tbl", "", 0},
		{"w:missing", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			e := FindFirstDescendant(root, tt.tag)
			if got := TextOf(e); got != tt.text {
				t.Errorf("TextOf() = %q, want %q", got, tt.text)
			}
			if got := IntOf(e); got != tt.num {
				t.Errorf("IntOf() = %d, want %d", got, tt.num)
			}
		})
	}
}

func TestAttributeAndTagContains(t *testing.T) {
	root := mustParse(t, sample)
	if _, ok := Attribute(root, "w:rsid"); ok {
		t.Error("root has no w:rsid")
	}
	if _, ok := Attribute(nil, "w:rsid"); ok {
		t.Error("nil element has no attributes")
	}
	if !TagContains(FindFirstDescendant(root, "w:count"), "count") {
		t.Error("expected substring match on tag")
	}
}
