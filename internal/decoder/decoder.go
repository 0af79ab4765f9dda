// Package decoder turns a chunked stream of CSV transaction rows into domain records.
//
// Chunks do not need to be aligned to record boundaries: the trailing unterminated
// fragment of each chunk is carried over to the next Feed call and decoded once its
// terminator arrives, or on Finish.
package decoder

import (
	"bytes"

	"github.com/vadiminshakov/txengine/internal/domain"
)

const (
	defaultDelimiter        = ','
	defaultMaxLineWidth     = 4096
	defaultMaxIntegerDigits = 200
)

// Options controls field validation.
type Options struct {
	// StrictSchema rejects records carrying fields their kind does not allow.
	StrictSchema bool
	// Delimiter separates fields within a record.
	Delimiter byte
	// MaxLineWidth is the longest accepted record in bytes, 0 disables the limit.
	MaxLineWidth int
	// MaxIntegerDigits bounds the integer part of amounts, 0 disables the limit.
	MaxIntegerDigits int
}

// DefaultOptions returns strict decoding with a comma delimiter.
func DefaultOptions() Options {
	return Options{
		StrictSchema:     true,
		Delimiter:        defaultDelimiter,
		MaxLineWidth:     defaultMaxLineWidth,
		MaxIntegerDigits: defaultMaxIntegerDigits,
	}
}

// Result is either a decoded record or the reason a record was rejected.
type Result struct {
	Record domain.Transaction
	Err    *DecodeError
}

// Decoder is an incremental record decoder. It is not safe for concurrent use.
type Decoder struct {
	opts Options

	// carry holds the unterminated tail of the input seen so far.
	carry []byte
	// line counts terminated lines consumed so far.
	line int
	// headerChecked is set once the first non-blank line was inspected.
	headerChecked bool
	// discarding is set while skipping the remainder of an oversized line.
	discarding bool
	finished   bool
}

// New creates a decoder. A zero Delimiter falls back to a comma.
func New(opts Options) *Decoder {
	if opts.Delimiter == 0 {
		opts.Delimiter = defaultDelimiter
	}
	return &Decoder{opts: opts}
}

// Feed consumes the next chunk and returns, in input order, the results of every
// record terminated within it. The chunk is not retained.
func (d *Decoder) Feed(chunk []byte) []Result {
	if d.finished {
		return nil
	}

	var out []Result
	data := chunk
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			out = d.hold(data, out)
			break
		}

		segment := data[:i]
		data = data[i+1:]
		d.line++

		if d.discarding {
			d.discarding = false
			d.carry = d.carry[:0]
			continue
		}

		if len(d.carry) > 0 {
			d.carry = append(d.carry, segment...)
			out = d.decodeLine(d.carry, out)
			d.carry = d.carry[:0]
			continue
		}

		out = d.decodeLine(segment, out)
	}

	return out
}

// Finish decodes the held fragment, if any, as if it were terminated.
// Further Feed and Finish calls are no-ops.
func (d *Decoder) Finish() []Result {
	if d.finished {
		return nil
	}
	d.finished = true

	if d.discarding || len(d.carry) == 0 {
		d.carry = nil
		return nil
	}

	d.line++
	out := d.decodeLine(d.carry, nil)
	d.carry = nil
	return out
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (d *Decoder) Pending() int {
	return len(d.carry)
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int {
	return d.line
}

// hold appends an unterminated fragment to the carry buffer. When the buffered line
// outgrows MaxLineWidth it is reported once and dropped up to its terminator.
func (d *Decoder) hold(fragment []byte, out []Result) []Result {
	if d.discarding {
		return out
	}

	if d.opts.MaxLineWidth > 0 && len(d.carry)+len(fragment) > d.opts.MaxLineWidth {
		raw := string(d.carry) + string(fragment)
		out = append(out, Result{Err: newDecodeError(d.line+1, raw, lineTooLong(d.opts.MaxLineWidth))})
		d.carry = d.carry[:0]
		d.discarding = true
		return out
	}

	d.carry = append(d.carry, fragment...)
	return out
}
