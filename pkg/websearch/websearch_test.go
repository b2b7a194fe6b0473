package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	page := `<html><head><title>ignored</title><style>body{}</style></head>
<body>
  <script>var hidden = true;</script>
  <h1>Heading</h1>
  <p>First   paragraph.</p>
  <noscript>also hidden</noscript>
  <div>Second <b>bold</b> bit</div>
</body></html>`

	text, err := ExtractText(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	for _, want := range []string{"Heading", "First   paragraph.", "Second", "bold", "bit"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q missing %q", text, want)
		}
	}
	for _, banned := range []string{"hidden", "ignored", "body{}"} {
		if strings.Contains(text, banned) {
			t.Errorf("text %q leaked non-visible content %q", text, banned)
		}
	}
}

func TestSearchParsesAndCapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "capital of france" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q", got)
		}
		fmt.Fprint(w, `{"results":[
			{"title":"A","url":"http://a","content":"snippet a"},
			{"title":"B","url":"http://b","content":"snippet b"},
			{"title":"C","url":"http://c","content":"snippet c"}
		]}`)
	}))
	defer srv.Close()

	results, err := NewClient(srv.URL).Search(context.Background(), "capital of france", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want capped 2", len(results))
	}
	if results[0].Title != "A" || results[0].URL != "http://a" || results[0].Snippet != "snippet a" {
		t.Errorf("result[0] = %+v", results[0])
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "q", 3)
	if err == nil {
		t.Fatal("Search succeeded, want error")
	}
}

func TestFetchAllAlignsWithURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			fmt.Fprint(w, "<html><body>page content</body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	texts := NewFetcher().FetchAll(context.Background(), []string{srv.URL + "/missing", srv.URL + "/ok"})

	if len(texts) != 2 {
		t.Fatalf("got %d texts, want 2", len(texts))
	}
	if texts[0] != "" {
		t.Errorf("failed page should yield empty string, got %q", texts[0])
	}
	if !strings.Contains(texts[1], "page content") {
		t.Errorf("texts[1] = %q", texts[1])
	}
}
