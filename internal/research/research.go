package research

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/pep299/study-planner/internal/model"
)

const (
	resultsPerDepth = 3
	maxSummaryRunes = 1000
)

// Research searches for a topic, fetches the top pages concurrently and mines
// them into a bundle. It never fails: a failing search yields an empty bundle
// and unreadable pages are dropped.
func (c *Client) Research(ctx context.Context, topic string, depth int) *model.ResearchBundle {
	depth = model.ClampDepth(depth)
	start := time.Now()

	results, err := c.Search(ctx, topic, depth*resultsPerDepth)
	if err != nil {
		c.log.Warn("search failed, continuing without research", "topic", topic, "error", err)
		return model.EmptyResearch(topic)
	}

	results = dedupeByURL(results)
	slots := make([]*model.SourceItem, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, r := range results {
		i, r := i, r
		g.Go(func() error {
			text, ok := c.FetchText(gctx, r.URL)
			if !ok {
				return nil
			}
			slots[i] = &model.SourceItem{
				Title:   r.Title,
				URL:     r.URL,
				Summary: truncateRunes(text, maxSummaryRunes),
				Source:  r.Source,
			}
			return nil
		})
	}
	_ = g.Wait()

	bundle := &model.ResearchBundle{
		Topic:   topic,
		Sources: make([]model.SourceItem, 0, len(slots)),
	}
	for _, s := range slots {
		if s != nil {
			bundle.Sources = append(bundle.Sources, *s)
		}
	}
	bundle.KeyConcepts = ExtractConcepts(bundle.Sources)
	bundle.RelatedTopics = ExtractRelatedTopics(topic, results)

	c.log.Info("research complete",
		"topic", topic,
		"results", len(results),
		"sources", len(bundle.Sources),
		"concepts", len(bundle.KeyConcepts),
		"duration", time.Since(start).String(),
	)
	return bundle
}

func dedupeByURL(results []model.SearchResult) []model.SearchResult {
	seen := make(map[string]bool, len(results))
	out := results[:0:0]
	for _, r := range results {
		key := strings.TrimRight(r.URL, "/")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
