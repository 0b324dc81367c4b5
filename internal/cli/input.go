package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
)

const maxLineBytes = 1 << 20

// lineReader pumps input lines into a channel so the same input can serve both the
// command prompt and a running quiz, where answers race the question timer.
type lineReader struct {
	lines chan string
	done  chan struct{}
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go r.pump(in)
	return r
}

func (r *lineReader) pump(in io.Reader) {
	defer close(r.lines)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		select {
		case r.lines <- strings.TrimRight(scanner.Text(), "\r"):
		case <-r.done:
			return
		}
	}
}

// next returns the next line, or io.EOF once input is exhausted.
func (r *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (r *lineReader) stop() {
	close(r.done)
}
