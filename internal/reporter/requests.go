package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bebsworthy/pathsieve/internal/filter"
)

// maxLineSize bounds one request line; payloads can be large
const maxLineSize = 4 << 20

// RequestLine is one line of a JSON lines request stream. A missing buffer
// is absent, not empty.
type RequestLine struct {
	Identifier   string  `json:"identifier,omitempty"`
	Path         string  `json:"path"`
	Buffer       *string `json:"buffer,omitempty"`
	ContentIndex int     `json:"contentIndex,omitempty"`
}

// Request converts the line to a classification request
func (l RequestLine) Request() filter.Request {
	req := filter.Request{
		Identifier:   l.Identifier,
		Path:         l.Path,
		ContentIndex: l.ContentIndex,
	}
	if l.Buffer != nil {
		req.Buffer = []byte(*l.Buffer)
	}
	return req
}

// DecodeRequest parses one request line
func DecodeRequest(line []byte) (filter.Request, error) {
	var rl RequestLine
	if err := json.Unmarshal(line, &rl); err != nil {
		return filter.Request{}, err
	}
	return rl.Request(), nil
}

// ScanRequests calls fn for every non-blank line of r, stopping at the first
// error. Line numbers start at 1.
func ScanRequests(r io.Reader, fn func(n int, req filter.Request) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		req, err := DecodeRequest(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if err := fn(n, req); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ReadRequests reads a whole JSON lines request stream
func ReadRequests(r io.Reader) ([]filter.Request, error) {
	var requests []filter.Request
	err := ScanRequests(r, func(_ int, req filter.Request) error {
		requests = append(requests, req)
		return nil
	})
	return requests, err
}
