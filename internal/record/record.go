// Package record splits a byte stream into complete records delimited by a
// separator (a literal string, a regular expression, or a caller-supplied
// scanner function), safely across chunk boundaries and across multi-byte
// character splits, with support for changing the stream's encoding
// mid-flight. It backs GitDriver's consumption of ls-tree/log -z output
// and blame --incremental's line-oriented output.
package record

import (
	"bytes"
	"regexp"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/caseflow/git-casefile/internal/casefileerr"
)

// Separator locates the next delimiter in data, returning its byte offset
// and length. Implementations must be side-effect free.
type Separator interface {
	find(data []byte) (start, length int, ok bool)
}

type stringSeparator struct{ sep []byte }

func (s stringSeparator) find(data []byte) (int, int, bool) {
	idx := bytes.Index(data, s.sep)
	if idx < 0 {
		return 0, 0, false
	}
	return idx, len(s.sep), true
}

// NewStringSeparator builds a Separator that matches a literal byte
// sequence.
func NewStringSeparator(sep string) Separator {
	return stringSeparator{sep: []byte(sep)}
}

type regexSeparator struct{ re *regexp.Regexp }

func (r regexSeparator) find(data []byte) (int, int, bool) {
	loc := r.re.FindIndex(data)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1] - loc[0], true
}

// NewRegexSeparator builds a Separator from a compiled regular expression.
//
// The JS original rejects "global" regex separators; Go's regexp package
// has no global/non-global distinction (every match call finds exactly one
// leftmost occurrence), so that check has no direct analogue. The
// equivalent Go hazard — a separator capable of matching the empty string,
// which would split the stream into infinite zero-length records — is
// rejected instead.
func NewRegexSeparator(re *regexp.Regexp) (Separator, error) {
	if re == nil {
		return nil, casefileerr.New(casefileerr.CodeInvalidSeparator, "regex separator must not be nil")
	}
	if re.MatchString("") {
		return nil, casefileerr.New(casefileerr.CodeInvalidSeparator, "regex separator must not match the empty string")
	}
	return regexSeparator{re: re}, nil
}

// ScanFunc is a caller-supplied separator: given the unconsumed buffer, it
// returns the next delimiter's start/length, or ok=false if none is found
// yet (more data may resolve it).
type ScanFunc func(data []byte) (start, length int, ok bool)

type funcSeparator struct{ fn ScanFunc }

func (f funcSeparator) find(data []byte) (int, int, bool) { return f.fn(data) }

// NewFuncSeparator builds a Separator from a caller-supplied scanner.
func NewFuncSeparator(fn ScanFunc) Separator {
	return funcSeparator{fn: fn}
}

// Handler receives one complete, decoded record. Returning true requests
// early termination: the Stream stops feeding it any further records,
// including the terminal Flush.
type Handler func(record string) (stop bool)

// Stream incrementally splits chunks of bytes into records. It is not
// safe for concurrent use by multiple goroutines.
type Stream struct {
	sep     Separator
	handler Handler
	enc     encoding.Encoding
	dec     *encoding.Decoder

	rawCarry  []byte // undecoded bytes held back across chunk boundaries
	textCarry []byte // decoded text not yet matched against the separator
	stopped   bool
}

// New constructs a Stream. enc may be nil, defaulting to UTF-8.
func New(sep Separator, handler Handler, enc encoding.Encoding) (*Stream, error) {
	if sep == nil {
		return nil, casefileerr.New(casefileerr.CodeInvalidSeparator, "separator must not be nil")
	}
	if handler == nil {
		return nil, casefileerr.New(casefileerr.CodeInvalidSeparator, "handler must not be nil")
	}
	if enc == nil {
		enc = unicode.UTF8
	}
	return &Stream{
		sep:     sep,
		handler: handler,
		enc:     enc,
		dec:     enc.NewDecoder(),
	}, nil
}

// SetEncoding changes the active decoding encoding mid-stream. Any
// decoder residue pending for the old encoding is flushed into the text
// carryover before the switch, per spec.
func (s *Stream) SetEncoding(enc encoding.Encoding) {
	if s.stopped || enc == nil {
		return
	}
	s.flushDecoderResidue()
	s.enc = enc
	s.dec = enc.NewDecoder()
	s.rawCarry = nil
}

// Write feeds one chunk of raw bytes into the stream, decoding it and
// emitting any complete records it produces (together with whatever was
// held over from previous chunks).
func (s *Stream) Write(chunk []byte) {
	if s.stopped {
		return
	}
	data := append(s.rawCarry, chunk...) //nolint:gocritic // intentional append-to-shared-buffer pattern, data is not reused
	decoded, consumed := transformChunk(s.dec, data, false)
	s.textCarry = append(s.textCarry, decoded...)
	if consumed < len(data) {
		s.rawCarry = append([]byte(nil), data[consumed:]...)
	} else {
		s.rawCarry = nil
	}
	s.extractRecords()
}

// Flush finalizes the stream: any decoder residue is flushed, and any
// non-empty carryover is emitted as one final record.
func (s *Stream) Flush() {
	if s.stopped {
		return
	}
	s.flushDecoderResidue()
	s.extractRecords()
	if len(s.textCarry) > 0 {
		record := string(s.textCarry)
		s.textCarry = nil
		if !s.stopped {
			s.invoke(record)
		}
	}
}

func (s *Stream) flushDecoderResidue() {
	if len(s.rawCarry) == 0 {
		return
	}
	decoded, _ := transformChunk(s.dec, s.rawCarry, true)
	s.textCarry = append(s.textCarry, decoded...)
	s.rawCarry = nil
}

func (s *Stream) extractRecords() {
	for !s.stopped {
		start, length, ok := s.sep.find(s.textCarry)
		if !ok {
			return
		}
		record := string(s.textCarry[:start])
		s.textCarry = s.textCarry[start+length:]
		s.invoke(record)
	}
}

func (s *Stream) invoke(record string) {
	if s.handler(record) {
		s.stopped = true
	}
}

// transformChunk runs the decoder over data, returning the decoded bytes
// and the number of source bytes consumed. With atEOF=false a trailing
// partial multi-byte sequence is left unconsumed (transform.ErrShortSrc)
// so it can be retried once more bytes arrive.
func transformChunk(dec *encoding.Decoder, data []byte, atEOF bool) (decoded []byte, consumed int) {
	dst := make([]byte, len(data)*4+64)
	nDst, nSrc, err := dec.Transform(dst, data, atEOF)
	for err != nil && nDst == len(dst) {
		// dst too small: grow and retry from the same source.
		dst = make([]byte, len(dst)*2)
		nDst, nSrc, err = dec.Transform(dst, data, atEOF)
	}
	return dst[:nDst], nSrc
}
