package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Reader provides context-aware line input that can be interrupted. Used
// for the interactive fallback when required flags are omitted.
type Reader struct {
	reader      *bufio.Reader
	readingLock sync.Mutex
}

// NewReader creates a context-aware reader.
func NewReader(reader io.Reader) *Reader {
	if reader == nil {
		panic("reader cannot be nil")
	}
	return &Reader{
		reader: bufio.NewReader(reader),
	}
}

// ReadLine reads one line, respecting context cancellation. The reading
// goroutine keeps running after cancellation until its pending read
// completes; stdin has no portable interruptible read.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}

// Prompt prints a styled prompt to w and reads the response.
func (r *Reader) Prompt(ctx context.Context, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(label)); err != nil {
		return "", err
	}
	return r.ReadLine(ctx)
}
