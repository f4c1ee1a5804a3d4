// Package search ranks console records against a free-text query.
//
// The index is built once from a snapshot of documents and is read-only
// afterwards, so it is safe for concurrent use. Scoring is the Jaccard
// similarity between the query token set and each document's token set:
// score = |Q ∩ D| / |Q ∪ D|. Ties are broken by shorter text, then by id, so
// the order is deterministic.
package search

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tbourn/rental-console/internal/domain"
)

// Doc is one searchable record.
type Doc struct {
	ID   string
	Text string
}

// Result is a matching document id with its similarity score.
type Result struct {
	ID    string
	Score float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	minScore  float64
}

func defaultConfig() config {
	return config{}
}

// WithStopwords drops the given words from documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMinScore discards matches scoring below s.
func WithMinScore(s float64) Option {
	return func(c *config) {
		if s > 0 && s <= 1 {
			c.minScore = s
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     string
	text   string
	tokens map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index over docs. Documents without tokens are skipped.
func NewIndex(docs []Doc, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	out := make([]doc, 0, len(docs))
	for _, d := range docs {
		toks := tokenize(d.Text, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		out = append(out, doc{id: d.ID, text: d.Text, tokens: toks})
	}
	return &index{cfg: cfg, docs: out}
}

// TopK returns up to k best-matching documents. k <= 0 returns every match.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	type scored struct {
		doc   doc
		score float64
	}
	var buf []scored
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		score := float64(over) / float64(len(qTokens)+len(d.tokens)-over)
		if score < i.cfg.minScore {
			continue
		}
		buf = append(buf, scored{doc: d, score: score})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if la, lb := len(buf[a].doc.text), len(buf[b].doc.text); la != lb {
			return la < lb
		}
		return buf[a].doc.id < buf[b].doc.id
	})

	if k <= 0 || k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for j := 0; j < k; j++ {
		out[j] = Result{ID: buf[j].doc.id, Score: buf[j].score}
	}
	return out
}

// ----------------------------------------------------------------------------
// Tickets

// TicketDoc returns the searchable text of a ticket.
func TicketDoc(t domain.Ticket) Doc {
	return Doc{ID: t.ID, Text: strings.Join([]string{
		t.ID, t.Type, t.Title, t.Status, t.Priority, t.Description,
		t.Agent, t.ApartmentNumber, t.Parking,
	}, " ")}
}

// FilterTickets returns the tickets matching q, best match first. An empty
// query returns tickets unchanged.
func FilterTickets(tickets []domain.Ticket, q string, opts ...Option) []domain.Ticket {
	if strings.TrimSpace(q) == "" {
		return tickets
	}
	docs := make([]Doc, len(tickets))
	byID := make(map[string]domain.Ticket, len(tickets))
	for i, t := range tickets {
		docs[i] = TicketDoc(t)
		byID[t.ID] = t
	}
	res := NewIndex(docs, opts...).TopK(q, 0)
	out := make([]domain.Ticket, 0, len(res))
	for _, r := range res {
		out = append(out, byID[r.ID])
	}
	return out
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	s = cases.Fold().String(s)
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
