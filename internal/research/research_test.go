package research

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pep299/study-planner/internal/cache"
	"github.com/pep299/study-planner/internal/model"
)

func resultBlock(href, title, source, snippet string) string {
	return fmt.Sprintf(`<div class="result results_links">
  <h2 class="result__title"><a class="result__a" href="%s">%s</a></h2>
  <a class="result__url" href="%s">%s</a>
  <a class="result__snippet">%s</a>
</div>`, href, title, href, source, snippet)
}

func redirect(target string) string {
	return "//duckduckgo.com/l/?uddg=" + url.QueryEscape(target) + "&rut=abc"
}

func TestParseSearchResults(t *testing.T) {
	page := "<html><body>" +
		resultBlock(redirect("https://go.dev/doc/"), "Go Documentation", "go.dev", "The Go docs") +
		resultBlock("javascript:void(0)", "Broken", "nowhere", "") +
		resultBlock("//example.com/tour", "Tour", "example.com", "A tour") +
		resultBlock("https://example.org/effective", "Effective Go", "example.org", "Tips") +
		"</body></html>"

	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	results := parseSearchResults(doc, 2)
	require.Len(t, results, 2)

	assert.Equal(t, "https://go.dev/doc/", results[0].URL)
	assert.Equal(t, "Go Documentation", results[0].Title)
	assert.Equal(t, "go.dev", results[0].Source)
	assert.Equal(t, "The Go docs", results[0].Snippet)

	// the unresolvable result is skipped and does not use up a slot
	assert.Equal(t, "https://example.com/tour", results[1].URL)
}

func TestResolveResultURL(t *testing.T) {
	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{redirect("https://a.example/x?y=1"), "https://a.example/x?y=1", true},
		{"/l/?uddg=" + url.QueryEscape("http://b.example/"), "http://b.example/", true},
		{"//c.example/page", "https://c.example/page", true},
		{"https://d.example", "https://d.example", true},
		{"/relative/path", "", false},
		{"mailto:someone@example.com", "", false},
		{"//duckduckgo.com/l/?rut=only", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := resolveResultURL(tt.href)
		if ok != tt.ok {
			t.Errorf("resolveResultURL(%q) ok = %v, want %v", tt.href, ok, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveResultURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestExtractTextStripsBoilerplate(t *testing.T) {
	page := `<html><head><style>body{color:red}</style><script>var x = 1;</script></head>
<body>
<header>Site Header</header>
<nav>Home | About</nav>
<article><h1>Concurrency</h1>
<p>Goroutines are lightweight threads.   Channels connect them.</p></article>
<aside>Related links</aside>
<footer>Copyright</footer>
</body></html>`

	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	text := ExtractText(doc)
	assert.Contains(t, text, "Concurrency")
	assert.Contains(t, text, "Goroutines are lightweight threads.")
	assert.Contains(t, text, "Channels connect them.")
	for _, hidden := range []string{"Site Header", "Home | About", "Related links", "Copyright", "color:red", "var x"} {
		assert.NotContains(t, text, hidden)
	}
	for _, line := range strings.Split(text, "\n") {
		assert.Equal(t, strings.TrimSpace(line), line)
		assert.NotEmpty(t, line)
	}
}

type fakeWeb struct {
	server    *httptest.Server
	pageHits  atomic.Int32
	searchHit atomic.Int32
}

func newFakeWeb(t *testing.T, searchStatus int) *fakeWeb {
	t.Helper()
	fw := &fakeWeb{}
	mux := http.NewServeMux()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fw.searchHit.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST search, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("kl") != "us-en" {
			t.Errorf("Expected kl=us-en, got %q", r.PostForm.Get("kl"))
		}
		if searchStatus != http.StatusOK {
			w.WriteHeader(searchStatus)
			return
		}
		base := fw.server.URL
		fmt.Fprint(w, "<html><body>"+
			resultBlock(base+"/page/one", "Python Programming Basics", "one.example", "")+
			resultBlock(base+"/page/missing", "Missing Page", "two.example", "")+
			resultBlock(base+"/page/one/", "Python Programming Basics again", "one.example", "")+
			resultBlock(base+"/page/two", "Data Structures Explained", "three.example", "")+
			"</body></html>")
	})
	mux.HandleFunc("/page/one", func(w http.ResponseWriter, r *http.Request) {
		fw.pageHits.Add(1)
		fmt.Fprint(w, `<html><body><p>Python is a high-level programming language used widely. Short one.</p></body></html>`)
	})
	mux.HandleFunc("/page/two", func(w http.ResponseWriter, r *http.Request) {
		fw.pageHits.Add(1)
		fmt.Fprint(w, `<html><body><p>A list is an ordered collection of items in Python. `+strings.Repeat("x", 1200)+`</p></body></html>`)
	})
	mux.HandleFunc("/page/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	fw.server = httptest.NewServer(mux)
	t.Cleanup(fw.server.Close)
	return fw
}

func TestResearchAggregatesInRankOrder(t *testing.T) {
	fw := newFakeWeb(t, http.StatusOK)
	client := NewClient(Options{SearchURL: fw.server.URL + "/search", MaxConcurrent: 2}, nil)

	bundle := client.Research(context.Background(), "Python Programming", 2)
	require.NotNil(t, bundle)

	assert.Equal(t, "Python Programming", bundle.Topic)
	require.Len(t, bundle.Sources, 2)
	assert.Equal(t, fw.server.URL+"/page/one", bundle.Sources[0].URL)
	assert.Equal(t, fw.server.URL+"/page/two", bundle.Sources[1].URL)
	assert.Equal(t, "three.example", bundle.Sources[1].Source)

	for _, s := range bundle.Sources {
		assert.LessOrEqual(t, len([]rune(s.Summary)), maxSummaryRunes)
	}

	assert.Contains(t, bundle.KeyConcepts, "Python is a high-level programming language used widely")
	for _, rt := range bundle.RelatedTopics {
		lower := strings.ToLower(rt)
		assert.NotContains(t, lower, "python")
		assert.NotContains(t, lower, "programming")
	}
	// duplicate url fetched once
	assert.Equal(t, int32(2), fw.pageHits.Load())
}

func TestResearchSearchFailureYieldsEmptyBundle(t *testing.T) {
	fw := newFakeWeb(t, http.StatusServiceUnavailable)
	client := NewClient(Options{SearchURL: fw.server.URL + "/search"}, nil)

	bundle := client.Research(context.Background(), "Rust", 3)
	require.NotNil(t, bundle)
	assert.Equal(t, "Rust", bundle.Topic)
	assert.Empty(t, bundle.Sources)
	assert.Empty(t, bundle.KeyConcepts)
	assert.Empty(t, bundle.RelatedTopics)
}

func TestSearchReportsFetchError(t *testing.T) {
	fw := newFakeWeb(t, http.StatusTooManyRequests)
	client := NewClient(Options{SearchURL: fw.server.URL + "/search"}, nil)

	_, err := client.Search(context.Background(), "Go", 3)
	require.Error(t, err)
	assert.True(t, IsFetchError(err))
	assert.Contains(t, err.Error(), "429")
}

func TestFetchTextTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	client := NewClient(Options{FetchTimeout: 50 * time.Millisecond}, nil)
	text, ok := client.FetchText(context.Background(), slow.URL)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestFetchTextUsesPageCache(t *testing.T) {
	fw := newFakeWeb(t, http.StatusOK)
	pages := cache.NewManagerWithCache(cache.NewMemoryCache(time.Hour))
	client := NewClient(Options{Pages: pages}, nil)

	pageURL := fw.server.URL + "/page/one"
	first, ok := client.FetchText(context.Background(), pageURL)
	require.True(t, ok)
	second, ok := client.FetchText(context.Background(), pageURL)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fw.pageHits.Load())
}

func TestExtractConcepts(t *testing.T) {
	sources := []model.SourceItem{
		{Summary: "Recursion is a technique where a function calls itself. Short is ok. " +
			"A closure refers to a function value that captures variables."},
		{Summary: "Recursion is a technique where a function calls itself. " +
			"This sentence has no marker word in it at all anywhere."},
	}

	concepts := ExtractConcepts(sources)
	assert.Equal(t, []string{
		"Recursion is a technique where a function calls itself",
		"A closure refers to a function value that captures variables",
	}, concepts)
}

func TestExtractConceptsCapsAndOrders(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, "Concept number %d is described here %s. ", i, strings.Repeat("z", i))
	}
	concepts := ExtractConcepts([]model.SourceItem{{Summary: sb.String()}})

	require.Len(t, concepts, maxConcepts)
	for i := 1; i < len(concepts); i++ {
		assert.LessOrEqual(t, len(concepts[i-1]), len(concepts[i]))
	}
	for _, c := range concepts {
		n := len([]rune(c))
		assert.Greater(t, n, minConceptRunes)
		assert.Less(t, n, maxConceptRunes)
	}
}

func TestExtractRelatedTopics(t *testing.T) {
	results := []model.SearchResult{
		{Title: "Learn Python Programming - Free Interactive Tutorial"},
		{Title: "Machine Learning Crash Course for Beginners"},
		{Title: "Data Structures and Algorithms"},
		{Title: "2024 | 10"},
	}

	related := ExtractRelatedTopics("python programming", results)
	require.NotEmpty(t, related)
	assert.LessOrEqual(t, len(related), maxRelatedTopics)
	assert.Equal(t, "Free Interactive", related[0])

	seen := map[string]bool{}
	for _, phrase := range related {
		lower := strings.ToLower(phrase)
		assert.False(t, seen[lower], "duplicate phrase %q", phrase)
		seen[lower] = true
		for _, w := range strings.Fields(lower) {
			assert.NotEqual(t, "python", w)
			assert.NotEqual(t, "programming", w)
			assert.False(t, stopWords[w], "stop word %q in %q", w, phrase)
		}
	}
}

func TestTrendingTopicsReturnsCopy(t *testing.T) {
	topics := TrendingTopics()
	require.Len(t, topics, 10)
	topics[0] = "changed"
	assert.Equal(t, "Machine Learning and AI", TrendingTopics()[0])
}
