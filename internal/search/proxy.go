// Package search runs fuzzy title matching on a worker goroutine that
// exclusively owns the candidate list and its index. Callers talk to it
// only through requests and responses.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"

	"partrep/internal/domain"
)

// ErrClosed is returned for requests sent after Close
var ErrClosed = errors.New("search proxy closed")

const defaultResponseBuffer = 16

// Document is one searchable candidate
type Document struct {
	ID     string
	Fields map[string]string
}

// Options tunes one search
type Options struct {
	Keys      []string // fields to match against
	Fuzziness int      // maximum edit distance per term, 0..2
	Limit     int      // maximum number of matches
}

// DefaultOptions searches titles with one typo allowed
func DefaultOptions() Options {
	return Options{Keys: []string{"title"}, Fuzziness: 1, Limit: 10}
}

// Match is one ranked search result
type Match struct {
	Document Document
	Index    int // position in the candidate list
	Score    float64
}

type hit struct {
	index int
	score float64
}

// Response answers one Search call. It echoes the query and the proxy's
// owner id so callers can recognise superseded answers.
type Response struct {
	Query   string
	OwnerID string
	Err     error

	hits []hit
	docs []Document
}

// Matches yields the results best-first
func (r Response) Matches() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, h := range r.hits {
			if !yield(Match{Document: r.docs[h.index], Index: h.index, Score: h.score}) {
				return
			}
		}
	}
}

// Len returns the number of matches
func (r Response) Len() int {
	return len(r.hits)
}

// Stale reports whether r answers something other than the live query
// of the given owner
func (r Response) Stale(liveQuery, ownerID string) bool {
	return r.Query != liveQuery || r.OwnerID != ownerID
}

type requestKind int

const (
	requestCandidates requestKind = iota
	requestSearch
)

type request struct {
	kind       requestKind
	candidates []Document
	query      string
	opts       Options
}

// Proxy is the caller-side handle of the search worker
type Proxy struct {
	id     string
	logger *slog.Logger

	mu     sync.Mutex
	queue  []request
	closed bool

	wake      chan struct{}
	responses chan Response
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewProxy starts a search worker
func NewProxy(logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Proxy{
		id:        uuid.NewString(),
		wake:      make(chan struct{}, 1),
		responses: make(chan Response, defaultResponseBuffer),
		done:      make(chan struct{}),
	}
	p.logger = logger.With("component", "search", "owner", p.id)

	w := &worker{logger: p.logger}
	p.wg.Add(1)
	go p.run(w)
	return p
}

// ID identifies this proxy in its responses
func (p *Proxy) ID() string {
	return p.id
}

// Responses delivers one Response per Search call, in request order.
// The channel is closed once the worker stops.
func (p *Proxy) Responses() <-chan Response {
	return p.responses
}

// SetCandidates replaces the candidate list. The index is rebuilt
// lazily by the next search.
func (p *Proxy) SetCandidates(docs []Document) error {
	snapshot := make([]Document, len(docs))
	copy(snapshot, docs)
	return p.enqueue(request{kind: requestCandidates, candidates: snapshot})
}

// Search queues a fuzzy search. It never blocks.
func (p *Proxy) Search(q string, opts Options) error {
	opts.Keys = append([]string(nil), opts.Keys...)
	return p.enqueue(request{kind: requestSearch, query: q, opts: opts})
}

// Close stops the worker and releases its index
func (p *Proxy) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.queue = nil
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	return nil
}

func (p *Proxy) enqueue(r request) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.queue = append(p.queue, r)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

func (p *Proxy) run(w *worker) {
	defer p.wg.Done()
	defer close(p.responses)
	defer w.close()

	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}

		for {
			p.mu.Lock()
			if len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			r := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()

			switch r.kind {
			case requestCandidates:
				w.setCandidates(r.candidates)
			case requestSearch:
				resp := w.search(r.query, r.opts)
				resp.OwnerID = p.id
				select {
				case p.responses <- resp:
				case <-p.done:
					return
				}
			}
		}
	}
}

// worker state is only touched by the run goroutine
type worker struct {
	logger     *slog.Logger
	candidates []Document
	index      bleve.Index
	valid      bool
}

func (w *worker) setCandidates(docs []Document) {
	w.candidates = docs
	w.valid = false
}

func (w *worker) search(q string, opts Options) Response {
	resp := Response{Query: q, docs: w.candidates}
	terms := strings.Fields(strings.ToLower(q))
	if len(terms) == 0 || len(w.candidates) == 0 || len(opts.Keys) == 0 {
		return resp
	}

	if !w.valid {
		if err := w.rebuild(); err != nil {
			w.logger.Error("index_build_failed", "error", err)
			resp.Err = err
			return resp
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = len(w.candidates)
	}
	req := bleve.NewSearchRequestOptions(buildQuery(q, terms[len(terms)-1], opts), limit, 0, false)
	result, err := w.index.SearchInContext(context.Background(), req)
	if err != nil {
		w.logger.Error("search_failed", "query", q, "error", err)
		resp.Err = fmt.Errorf("search failed: %w", err)
		return resp
	}

	resp.hits = make([]hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		i, err := strconv.Atoi(h.ID)
		if err != nil || i < 0 || i >= len(w.candidates) {
			continue
		}
		resp.hits = append(resp.hits, hit{index: i, score: h.Score})
	}
	w.logger.Debug("search_completed", "query", q, "matches", len(resp.hits))
	return resp
}

func (w *worker) rebuild() error {
	w.close()

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	batch := idx.NewBatch()
	for i, doc := range w.candidates {
		fields := make(map[string]interface{}, len(doc.Fields))
		for k, v := range doc.Fields {
			fields[k] = v
		}
		if err := batch.Index(strconv.Itoa(i), fields); err != nil {
			_ = idx.Close()
			return fmt.Errorf("failed to index candidate %s: %w", doc.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	w.index = idx
	w.valid = true
	w.logger.Debug("index_rebuilt", "candidates", len(w.candidates))
	return nil
}

func (w *worker) close() {
	if w.index != nil {
		_ = w.index.Close()
		w.index = nil
	}
	w.valid = false
}

// buildQuery matches every term with the allowed edit distance and
// treats the last term as a prefix still being typed
func buildQuery(q, lastTerm string, opts Options) query.Query {
	fuzziness := min(max(opts.Fuzziness, 0), 2)
	var clauses []query.Query
	for _, key := range opts.Keys {
		match := bleve.NewMatchQuery(q)
		match.SetField(key)
		match.SetFuzziness(fuzziness)
		clauses = append(clauses, match)

		prefix := bleve.NewPrefixQuery(lastTerm)
		prefix.SetField(key)
		prefix.SetBoost(0.5)
		clauses = append(clauses, prefix)
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

// TitleDocuments turns publication records into search candidates
func TitleDocuments(records []domain.TitleRecord) []Document {
	docs := make([]Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, Document{
			ID: TitleID(r),
			Fields: map[string]string{
				"title": r.Title,
				"issn":  strings.TrimSpace(r.PISSN + " " + r.EISSN),
			},
		})
	}
	return docs
}

// TitleID is the document id of a publication record
func TitleID(r domain.TitleRecord) string {
	if id := r.PreferredISSN(); id != "" {
		return id
	}
	return r.Title
}
