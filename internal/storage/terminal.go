package storage

import (
	"fmt"
	"io"
)

// Terminal is for displaying run outcome and data on terminal.
// Output writer is always os.Stdout except in case of testing.
type Terminal struct {
	out            io.Writer
	displayRecords bool
}

// NewTerminal creates a terminal display.
func NewTerminal(out io.Writer, displayRecords bool) *Terminal {
	return &Terminal{
		out:            out,
		displayRecords: displayRecords,
	}
}

// CommitPrices outputs input price data to terminal, if record display is enabled.
func (t *Terminal) CommitPrices(data []PriceRecord) {
	if !t.displayRecords {
		return
	}
	for _, p := range data {
		fmt.Fprintf(t.out, "%-10s%-12s%15f%15f%15f%15f%15d\n", p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume)
	}
}

// Success outputs the number of records committed.
func (t *Terminal) Success(inserted int) {
	fmt.Fprintf(t.out, "Inserted %d records successfully!\n", inserted)
}

// LoadFailure outputs a failed warehouse transaction.
func (t *Terminal) LoadFailure(err error) {
	fmt.Fprintf(t.out, "Transaction failed: %v\n", err)
}

// RunFailure outputs a failure that happened before the load stage.
func (t *Terminal) RunFailure(err error) {
	fmt.Fprintf(t.out, "Run failed: %v\n", err)
}
