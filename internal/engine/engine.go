// Package engine applies a decoded transaction stream to client accounts.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/internal/decoder"
	"github.com/vadiminshakov/txengine/internal/domain"
	"github.com/vadiminshakov/txengine/internal/storage/rejects"
	"go.uber.org/zap"
)

var (
	// ErrAborted is returned once a run was stopped by a malformed record.
	ErrAborted = errors.New("run aborted on malformed record")
	// ErrFinished is returned by calls made after Finish.
	ErrFinished = errors.New("engine already finished")
)

// DecodeErrors is a batch of decode failures.
type DecodeErrors []*decoder.DecodeError

func (e DecodeErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d malformed record(s): %s", len(e), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e DecodeErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

type rejectJournal interface {
	Save(reject rejects.Reject) error
}

// Stats counts what happened to the records of a run.
type Stats struct {
	// Records decoded successfully.
	Records int
	// Applied records that changed an account.
	Applied int
	// Ignored records that were valid but left their account unchanged.
	Ignored int
	// Rejected records that failed to decode.
	Rejected int
}

// Engine decodes chunks and applies the records strictly in arrival order.
// It owns all account state of a run and is not safe for concurrent use.
type Engine struct {
	cfg     Config
	l       *zap.Logger
	runID   string
	dec     *decoder.Decoder
	journal rejectJournal

	accounts map[domain.ClientID]*domain.Account
	// order lists clients in first-seen order.
	order    []domain.ClientID
	rejected []*decoder.DecodeError
	stats    Stats

	// err is sticky: set on abort or finish.
	err error
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records every rejected record in j.
func WithJournal(j rejectJournal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}

// New returns an engine with no accounts.
func New(l *zap.Logger, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid engine config")
	}
	if l == nil {
		l = zap.NewNop()
	}

	e := &Engine{
		cfg:      cfg,
		runID:    uuid.New().String(),
		dec:      decoder.New(cfg.Decoder),
		accounts: make(map[domain.ClientID]*domain.Account),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.l = l.With(zap.String("run_id", e.runID))

	return e, nil
}

// RunID identifies this run in logs and in the reject journal.
func (e *Engine) RunID() string {
	return e.runID
}

// Feed decodes chunk and applies every record terminated within it.
//
// With PolicyAbort the first malformed record stops the run: records before it are
// applied, nothing after it is, and Feed returns a DecodeErrors batch holding the
// failure. Later calls return an error wrapping ErrAborted.
// With PolicySkip malformed records are dropped and Feed returns nil; the dropped
// records accumulate in Rejected, so the batch skipped by one call is the tail of
// Rejected added since the previous call.
func (e *Engine) Feed(chunk []byte) error {
	if e.err != nil {
		return e.err
	}
	return e.process(e.dec.Feed(chunk))
}

// Finish decodes any unterminated trailing record and returns one snapshot per client
// in the order the clients first appeared.
func (e *Engine) Finish() ([]domain.Snapshot, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.process(e.dec.Finish()); err != nil {
		return nil, err
	}
	e.err = ErrFinished

	e.l.Info("run finished",
		zap.Int("lines", e.dec.Line()),
		zap.Int("clients", len(e.order)),
		zap.Int("records", e.stats.Records),
		zap.Int("applied", e.stats.Applied),
		zap.Int("ignored", e.stats.Ignored),
		zap.Int("rejected", e.stats.Rejected),
	)

	return e.Snapshots(), nil
}

// Snapshots returns the current state of every client seen so far.
func (e *Engine) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(e.order))
	for _, client := range e.order {
		out = append(out, e.accounts[client].Snapshot())
	}
	return out
}

// Stats returns the counters of the run so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Rejected returns the records that failed to decode, in input order.
func (e *Engine) Rejected() []*decoder.DecodeError {
	out := make([]*decoder.DecodeError, len(e.rejected))
	copy(out, e.rejected)
	return out
}

func (e *Engine) process(results []decoder.Result) error {
	for _, r := range results {
		if r.Err != nil {
			if err := e.reject(r.Err); err != nil {
				return err
			}
			continue
		}
		e.apply(r.Record)
	}
	return nil
}

func (e *Engine) apply(tx domain.Transaction) {
	e.stats.Records++

	if e.account(tx.ClientID()).Apply(tx) {
		e.stats.Applied++
		return
	}
	e.stats.Ignored++
}

// account returns the client's account, creating it on first reference.
func (e *Engine) account(client domain.ClientID) *domain.Account {
	acc, ok := e.accounts[client]
	if !ok {
		acc = domain.NewAccount(client)
		e.accounts[client] = acc
		e.order = append(e.order, client)
	}
	return acc
}

func (e *Engine) reject(derr *decoder.DecodeError) error {
	e.stats.Rejected++
	e.rejected = append(e.rejected, derr)

	if e.journal != nil {
		reject := rejects.Reject{
			RunID:  e.runID,
			Line:   derr.Line,
			Raw:    derr.Raw,
			Reason: derr.Err.Error(),
			Time:   time.Now(),
		}
		if err := e.journal.Save(reject); err != nil {
			e.l.Error("failed to journal rejected record", zap.Int("line", derr.Line), zap.Error(err))
		}
	}

	if e.cfg.OnDecodeError == PolicyAbort {
		e.l.Error("malformed record, aborting run", zap.Int("line", derr.Line), zap.String("raw", derr.Raw), zap.Error(derr.Err))
		e.err = errors.Wrapf(ErrAborted, "line %d", derr.Line)
		return DecodeErrors{derr}
	}

	e.l.Warn("skipping malformed record", zap.Int("line", derr.Line), zap.String("raw", derr.Raw), zap.Error(derr.Err))
	return nil
}
