package eventconductor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nbd-wtf/go-nostr"
)

// Ingest submits every transaction in r, one JSON encoded event per line. Blank lines are
// skipped. It stops at the first line that is not an event.
func (c *Conductor) Ingest(r io.Reader) (n int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 {
			continue
		}
		var e nostr.Event
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		c.Submit(e)
		n++
	}
	return n, scanner.Err()
}
