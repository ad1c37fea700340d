package rates

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// PromptEntry reads rates typed at a terminal.
type PromptEntry struct {
	in       *bufio.Reader
	out      io.Writer
	attempts int
}

func NewPromptEntry(in io.Reader, out io.Writer) *PromptEntry {
	return &PromptEntry{in: bufio.NewReader(in), out: out, attempts: 3}
}

// PromptRate asks for a rate. An empty line or end of input skips the date.
func (p *PromptEntry) PromptRate(ctx context.Context, day civil.Date) (decimal.Decimal, bool, error) {
	for i := 0; i < p.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return decimal.Decimal{}, false, err
		}
		fmt.Fprintf(p.out, "No EUR/USD rate found for %s. Enter rate (empty to skip): ", day)

		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return decimal.Decimal{}, false, fmt.Errorf("PromptRate: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return decimal.Decimal{}, false, nil
		}

		rate, perr := decimal.NewFromString(strings.Replace(line, ",", ".", 1))
		if perr == nil && rate.IsPositive() {
			return rate, true, nil
		}
		fmt.Fprintf(p.out, "Invalid rate %q\n", line)
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return decimal.Decimal{}, false, nil
}
