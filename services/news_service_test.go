package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const validFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Billiards News</title>
<item>
<title> First Story </title>
<link>https://example.com/1</link>
<description>Something happened.</description>
<pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
</item>
<item>
<title>Second Story</title>
<link>https://example.com/2</link>
<description>Something else.</description>
<pubDate>Tue, 25 Aug 2026 10:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

// truncatedFeed stops mid-item, as some mirrors do when they cut responses
// at a byte limit.
const truncatedFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Billiards News</title>
<item>
<title>Complete Story</title>
<link>https://example.com/1</link>
<description>Intact.</description>
<pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
</item>
<item>
<title>Cut-off Story</title>
<link>https://example.com/2</link>
<descri`

func newsServiceFor(urls ...string) NewsService {
	return NewNewsService(urls, testLogger())
}

func TestFetchParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validFeed))
	}))
	defer server.Close()

	items := newsServiceFor(server.URL).Fetch(context.Background())
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "First Story" {
		t.Fatalf("title = %q, want trimmed %q", items[0].Title, "First Story")
	}
	if items[1].Link != "https://example.com/2" {
		t.Fatalf("link = %q", items[1].Link)
	}
}

func TestFetchRepairsTruncatedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(truncatedFeed))
	}))
	defer server.Close()

	items := newsServiceFor(server.URL).Fetch(context.Background())
	if len(items) != 1 {
		t.Fatalf("got %d items, want the one complete item", len(items))
	}
	if items[0].Title != "Complete Story" {
		t.Fatalf("title = %q", items[0].Title)
	}
}

func TestFetchFallsBackToMirror(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validFeed))
	}))
	defer mirror.Close()

	items := newsServiceFor(broken.URL, mirror.URL).Fetch(context.Background())
	if len(items) != 2 {
		t.Fatalf("got %d items from mirror, want 2", len(items))
	}
}

func TestFetchNeverErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml at all"))
	}))
	defer server.Close()

	items := newsServiceFor(server.URL).Fetch(context.Background())
	if items == nil {
		t.Fatal("items must be a non-nil empty slice")
	}
	if len(items) != 0 {
		t.Fatalf("got %d items from garbage, want 0", len(items))
	}
}

func TestRepairTruncatedFeed(t *testing.T) {
	repaired := string(repairTruncatedFeed([]byte(truncatedFeed)))
	if !strings.HasSuffix(repaired, "</item></channel></rss>") {
		t.Fatalf("repaired feed not re-closed: ...%s", repaired[len(repaired)-40:])
	}
	if strings.Contains(repaired, "Cut-off Story") {
		t.Fatal("incomplete item must be dropped")
	}
}
