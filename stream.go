package marc

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"
)

// Result is one per-line outcome of a Stream: either a decoded Record or the
// Issues that line produced. Line is 1-based and counts every input line,
// blank ones included.
type Result struct {
	Record *Record
	Line   int
	Err    error
}

type streamConfig struct {
	workers      int
	failFast     bool
	maxLineBytes int
}

// StreamOption configures a Stream.
type StreamOption func(*streamConfig)

// WithWorkers enables parallel decoding with n workers. Input order is
// preserved: results are delivered in line order regardless of which worker
// finishes first. n <= 1 keeps the sequential path.
func WithWorkers(n int) StreamOption {
	return func(c *streamConfig) { c.workers = n }
}

// WithFailFast makes the first per-line decode error terminal: the errored
// Result is still delivered, and the stream stops afterwards.
func WithFailFast(v bool) StreamOption {
	return func(c *streamConfig) { c.failFast = v }
}

// WithMaxLineBytes caps the size of a single input line. A longer line fails
// the underlying scanner, which is terminal for the stream (surfaced via
// Err). Zero keeps bufio's default cap.
func WithMaxLineBytes(n int) StreamOption {
	return func(c *streamConfig) { c.maxLineBytes = n }
}

// Stream lazily decodes a line-delimited MIJ input, one Result per non-blank
// line, in line order. No line is read or decoded before the first Next.
// Decode failures are per-line outcomes and do not halt the stream; only a
// failure of the line source itself is terminal (see Err). A Stream is not
// restartable and not safe for concurrent use by multiple consumers.
type Stream struct {
	cfg    streamConfig
	sc     *bufio.Scanner
	closer io.Closer

	ctx    context.Context
	cancel context.CancelFunc

	line       int
	terminated bool
	err        error

	// parallel mode
	started bool
	pending chan chan Result
	scanErr error // written by the producer before closing pending

	closeOnce sync.Once
	closeErr  error
}

// NewStream builds a Stream over r. A nil reader is a usage error, reported
// via Err on the first Next.
func NewStream(r io.Reader, opts ...StreamOption) *Stream {
	var cfg streamConfig
	for _, o := range opts {
		o(&cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream{cfg: cfg, ctx: ctx, cancel: cancel}
	if cfg.workers < 0 {
		s.err = singleIssue(CodeUsage, "/", "worker count must be non-negative")
		s.terminated = true
		return s
	}
	if r == nil {
		s.err = singleIssue(CodeUsage, "/", "nil reader")
		s.terminated = true
		return s
	}
	sc := bufio.NewScanner(r)
	if cfg.maxLineBytes > 0 {
		sc.Buffer(make([]byte, 0, 64*1024), cfg.maxLineBytes)
	}
	s.sc = sc
	return s
}

// OpenStream builds a Stream over the named file. Open failures are an
// io_error outcome, distinct from decode errors. Close releases the file.
func OpenStream(path string, opts ...StreamOption) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, AppendIssues(nil, Issue{Code: CodeIO, Path: "/", Message: err.Error(), Offset: -1, Cause: err})
	}
	s := NewStream(f, opts...)
	s.closer = f
	return s, nil
}

// Next returns the next per-line Result. The second result is false when the
// stream is exhausted, terminated, or closed; check Err afterwards to
// distinguish a clean end from a line-source failure.
func (s *Stream) Next() (Result, bool) {
	if s.terminated {
		return Result{}, false
	}
	select {
	case <-s.ctx.Done():
		s.terminated = true
		return Result{}, false
	default:
	}
	if s.cfg.workers > 1 {
		return s.nextParallel()
	}
	return s.nextSequential()
}

// Err returns the terminal error, if any: an io_error when the line source
// failed, or a usage_error from construction. It is nil after a clean end of
// input and nil while results are still pending.
func (s *Stream) Err() error { return s.err }

// Close stops consumption. Any parallel decode workers wind down without
// leaking, and the underlying file (for OpenStream) is released. Close is
// idempotent and safe to call mid-stream.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
	return s.closeErr
}

func (s *Stream) nextSequential() (Result, bool) {
	for s.sc.Scan() {
		s.line++
		data := s.sc.Bytes()
		if len(strings.TrimSpace(string(data))) == 0 {
			continue
		}
		rec, err := DecodeBytes(s.ctx, data)
		res := Result{Record: rec, Line: s.line, Err: err}
		if err != nil && s.cfg.failFast {
			s.terminated = true
		}
		return res, true
	}
	s.terminated = true
	if err := s.sc.Err(); err != nil {
		s.err = AppendIssues(nil, Issue{Code: CodeIO, Path: "/", Message: err.Error(), Offset: -1, Cause: err})
	}
	return Result{}, false
}

type decodeJob struct {
	data []byte
	line int
	out  chan Result
}

func (s *Stream) nextParallel() (Result, bool) {
	if !s.started {
		s.start()
	}
	ch, ok := <-s.pending
	if !ok {
		s.terminated = true
		s.err = s.scanErr
		return Result{}, false
	}
	select {
	case res := <-ch:
		if res.Err != nil && s.cfg.failFast {
			s.terminated = true
			s.cancel()
		}
		return res, true
	case <-s.ctx.Done():
		s.terminated = true
		return Result{}, false
	}
}

// start spins up the producer and worker pool. The producer hands every line
// a dedicated result channel and queues those channels in line order, so
// consumers see input order no matter which worker finishes first.
func (s *Stream) start() {
	s.started = true
	s.pending = make(chan chan Result, s.cfg.workers*2)
	jobs := make(chan decodeJob, s.cfg.workers)

	for i := 0; i < s.cfg.workers; i++ {
		go func() {
			for job := range jobs {
				rec, err := Decode(s.ctx, JSONBytes(job.data))
				// Buffered; never blocks, so draining after cancel is leak-free.
				job.out <- Result{Record: rec, Line: job.line, Err: err}
			}
		}()
	}

	go func() {
		defer close(s.pending)
		defer close(jobs)
		line := 0
		for s.sc.Scan() {
			line++
			if len(strings.TrimSpace(s.sc.Text())) == 0 {
				continue
			}
			data := append([]byte(nil), s.sc.Bytes()...)
			out := make(chan Result, 1)
			select {
			case s.pending <- out:
			case <-s.ctx.Done():
				return
			}
			select {
			case jobs <- decodeJob{data: data, line: line, out: out}:
			case <-s.ctx.Done():
				// The consumer stopped; the queued out channel stays empty
				// but nextParallel bails out on ctx.Done.
				return
			}
		}
		if err := s.sc.Err(); err != nil {
			s.scanErr = AppendIssues(nil, Issue{Code: CodeIO, Path: "/", Message: err.Error(), Offset: -1, Cause: err})
		}
	}()
}
