package web

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestRenderIndex(t *testing.T) {
	var buf bytes.Buffer
	err := RenderIndex(&buf, Templates(), Page{
		Title:        "Lights On",
		DefaultSize:  5,
		MinSize:      1,
		MaxSize:      12,
		Difficulty:   "medium",
		Difficulties: []string{"easy", "medium", "hard"},
	})
	if err != nil {
		t.Fatalf("RenderIndex: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<title>Lights On</title>", `value="5"`, `max="12"`, `<option value="medium" selected>`, "/static/app.js"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestStaticFS(t *testing.T) {
	for _, name := range []string{"/app.js", "/style.css"} {
		f, err := StaticFS().Open(name)
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil || len(b) == 0 {
			t.Fatalf("read %s: %d bytes, %v", name, len(b), err)
		}
	}
}
