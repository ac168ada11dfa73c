package ooxmlparts

import (
	"errors"
	"sync"
	"testing"

	"github.com/johbar/docx-field-service/internal/docxtest"
	"github.com/johbar/docx-field-service/pkg/ooxmlzip"
)

func newLoader(t *testing.T, parts []docxtest.Part) *Loader {
	t.Helper()
	a, err := ooxmlzip.NewFromBytes(docxtest.Bytes(t, parts), 0)
	if err != nil {
		t.Fatal(err)
	}
	return NewLoader(a, nil)
}

func TestLoadCachesTrees(t *testing.T) {
	l := newLoader(t, docxtest.DefaultParts())
	first, err := l.Load(MainDocument)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(MainDocument)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the same tree on the second load")
	}
	if n := l.Extractions(); n != 1 {
		t.Errorf("expected 1 extraction, got %d", n)
	}
}

func TestAbsentAndMalformed(t *testing.T) {
	parts := docxtest.With(docxtest.Without(docxtest.DefaultParts(), Comments),
		docxtest.Part{Name: Settings, Body: "<w:settings><<<"})
	l := newLoader(t, parts)

	_, err := l.Load(Comments)
	if !errors.Is(err, ErrPartAbsent) {
		t.Errorf("expected ErrPartAbsent, got %v", err)
	}
	if errors.Is(err, ErrParse) {
		t.Error("absent part must not be reported as parse error")
	}
	_, err = l.Load(Settings)
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	// negative results are cached as well
	l.Load(Comments)
	l.Load(Settings)
	if n := l.Extractions(); n != 2 {
		t.Errorf("expected 2 extractions, got %d", n)
	}
}

func TestConcurrentLoads(t *testing.T) {
	l := newLoader(t, docxtest.DefaultParts())
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(CoreProperties); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if n := l.Extractions(); n != 1 {
		t.Errorf("expected 1 extraction, got %d", n)
	}
}
