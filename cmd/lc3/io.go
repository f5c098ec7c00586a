package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
)

func (c *cli) openInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(bufio.NewReaderSize(c.stdin, 64<<10)), nil
	}
	return os.Open(path)
}

// bufferedOutput flushes on Close and closes the file, if any.
type bufferedOutput struct {
	*bufio.Writer
	f *os.File
}

func (b *bufferedOutput) Close() error {
	err := b.Flush()
	if b.f != nil {
		err = errors.Join(err, b.f.Close())
	}
	return err
}

func (c *cli) openOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return &bufferedOutput{Writer: bufio.NewWriterSize(c.stdout, 64<<10)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &bufferedOutput{Writer: bufio.NewWriterSize(f, 64<<10), f: f}, nil
}

// label names a trace session.
func (c *cli) label(in string) string {
	if c.cfg.Trace.Label != "" {
		return c.cfg.Trace.Label
	}
	if in == "-" || in == "" {
		return "stdin"
	}
	return filepath.Base(in)
}

// tailWriter holds back the last hold bytes written so the output can be
// cut once its final length is known.
type tailWriter struct {
	w       io.Writer
	hold    int
	buf     []byte
	written int64
}

func (t *tailWriter) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if n := len(t.buf) - t.hold; n > 0 {
		if _, err := t.w.Write(t.buf[:n]); err != nil {
			return 0, err
		}
		t.written += int64(n)
		t.buf = append(t.buf[:0], t.buf[n:]...)
	}
	return len(p), nil
}

// finish writes the held bytes that fit in a total of limit bytes. A
// negative limit writes them all.
func (t *tailWriter) finish(limit int64) error {
	n := int64(len(t.buf))
	if limit >= 0 {
		n = min(n, max(0, limit-t.written))
	}
	_, err := t.w.Write(t.buf[:n])
	t.written += n
	t.buf = t.buf[:0]
	return err
}
