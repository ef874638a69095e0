package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const stderrLimit = 4096

// stage is one producer in a decode pipeline.
type stage interface {
	// wait blocks until the stage is done and reports how it ended.
	wait() error
	// stop aborts the stage. A stopped stage reports no error.
	stop()
}

// proc is an external process whose exit status and stderr end up in the
// pipeline's error.
type proc struct {
	name   string
	cmd    *exec.Cmd
	stderr *limitedWriter

	mu      sync.Mutex
	stopped bool

	once sync.Once
	err  error
}

func newProc(name string, cmd *exec.Cmd) *proc {
	p := &proc{name: name, cmd: cmd, stderr: &limitedWriter{left: stderrLimit}}
	cmd.Stderr = p.stderr
	return p
}

func (p *proc) wait() error {
	p.once.Do(func() {
		err := p.cmd.Wait()

		p.mu.Lock()
		stopped := p.stopped
		p.mu.Unlock()

		if err != nil && !stopped {
			p.err = fmt.Errorf("%s: %w%s", p.name, err, p.stderr.detail())
		}
	})
	return p.err
}

func (p *proc) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.wait()
	}
}

// copier feeds a download into a decoder's stdin.
type copier struct {
	name string
	src  io.ReadCloser
	dst  io.WriteCloser

	mu      sync.Mutex
	stopped bool

	done chan struct{}
	err  error
}

func startCopier(name string, src io.ReadCloser, dst io.WriteCloser) *copier {
	c := &copier{name: name, src: src, dst: dst, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		_, err := io.Copy(dst, src)
		dst.Close()

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil && !c.stopped {
			c.err = fmt.Errorf("%s: %w", c.name, err)
		}
	}()
	return c
}

func (c *copier) wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *copier) stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()

	c.src.Close()
	c.dst.Close()
	<-c.done
}

// pipeline is a chain of producers ending in a decoder whose stdout carries
// the PCM.
type pipeline struct {
	decoder  stage
	upstream []stage

	mu      sync.Mutex
	stopped bool

	once sync.Once
	err  error
}

func newPipeline(decoder stage, upstream ...stage) *pipeline {
	return &pipeline{decoder: decoder, upstream: upstream}
}

// finish collects the outcome of every stage once the decoder's output is
// drained. When the decoder failed, upstream stages are aborted since
// nobody reads them anymore.
func (p *pipeline) finish() error {
	p.once.Do(func() {
		decErr := p.decoder.wait()
		if decErr != nil {
			for _, s := range p.upstream {
				s.stop()
			}
			p.err = decErr
			return
		}

		errs := make([]error, 0, len(p.upstream))
		for _, s := range p.upstream {
			errs = append(errs, s.wait())
		}
		p.err = errors.Join(errs...)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	return p.err
}

// stop aborts every stage. Errors caused by the abort are not reported.
func (p *pipeline) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.decoder.stop()
	for _, s := range p.upstream {
		s.stop()
	}
}

// pcmReader turns a clean end of the decoder's output into the pipeline's
// error when one of the stages failed.
type pcmReader struct {
	r io.Reader
	p *pipeline
}

func (r *pcmReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	if errors.Is(err, io.EOF) {
		if perr := r.p.finish(); perr != nil {
			return n, perr
		}
	}
	return n, err
}

// startPCM waits for the first decoded bytes, so a pipeline that produces
// nothing fails here instead of playing silence.
func startPCM(out io.Reader, p *pipeline) (io.Reader, error) {
	br := bufio.NewReaderSize(out, frameSize*channels*2)
	if _, err := br.Peek(1); err != nil {
		perr := p.finish()
		p.stop()
		if perr != nil {
			return nil, perr
		}
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyStream
		}
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	return &pcmReader{r: br, p: p}, nil
}

// limitedWriter keeps the first bytes of a noisy process' stderr.
type limitedWriter struct {
	mu   sync.Mutex
	buf  strings.Builder
	left int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(p)
	if l.left > 0 {
		chunk := p
		if len(chunk) > l.left {
			chunk = chunk[:l.left]
		}
		l.left -= len(chunk)
		l.buf.Write(chunk)
	}
	return n, nil
}

func (l *limitedWriter) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.TrimSpace(l.buf.String())
}

// detail formats the captured output for an error message.
func (l *limitedWriter) detail() string {
	if s := l.String(); s != "" {
		return ": " + s
	}
	return ""
}
