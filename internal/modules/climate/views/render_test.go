package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if homeTmpl == nil {
		t.Fatal("LoadTemplates() left homeTmpl nil")
	}
}

func TestLoadTemplates_failure_missing(t *testing.T) {
	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS) = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/home.html": {Data: []byte("{{ .")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS) = nil; want error")
	}
}

func TestRenderHome_notLoaded(t *testing.T) {
	prev := homeTmpl
	homeTmpl = nil
	t.Cleanup(func() { homeTmpl = prev })

	var buf bytes.Buffer
	err := RenderHome(&buf, &HomeData{})
	if err == nil {
		t.Fatal("RenderHome() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderHome_listsRoutes(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	var buf bytes.Buffer
	err := RenderHome(&buf, &HomeData{
		Links:       []string{"/api/v1.0/precipitation", "/api/v1.0/stations"},
		Templates:   []string{"/api/v1.0/YYYY-MM-DD"},
		WindowStart: "2016-08-23",
		WindowEnd:   "2017-08-23",
	})
	if err != nil {
		t.Fatalf("RenderHome() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Welcome to the Climate Analysis API!",
		`<a href="/api/v1.0/precipitation">/api/v1.0/precipitation</a>`,
		`<a href="/api/v1.0/stations">`,
		"/api/v1.0/YYYY-MM-DD",
		"2016-08-23 to 2017-08-23",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
