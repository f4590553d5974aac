package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func articlePage() string {
	body := strings.Repeat("The encirclement narrative returns in this opinion piece. ", 10)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Test Op-Ed</title></head>
<body>
<article>
<h1>Test Op-Ed</h1>
<p>%s</p>
<p>%s</p>
</article>
</body>
</html>`, body, body)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage())
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	article, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(article.Text, "encirclement narrative") {
		t.Errorf("extracted text missing body content: %q", article.Text[:80])
	}
	if strings.Contains(article.Text, "<") {
		t.Errorf("extracted text contains HTML: %q", article.Text[:80])
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestFetchTooLittleContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>short</p></body></html>")
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for page with no extractable article")
	}
}
