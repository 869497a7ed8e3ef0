package board

import (
	"strconv"
	"strings"
)

const scorigamiMessage = "SCORIGAMI! No game has ever ended with this score...yet!"

// Detail is what the inspection dialog shows for one cell.
type Detail struct {
	Score       string
	Possible    bool
	Scorigami   bool
	Occurrences int
	LastGame    string
	Message     string
	// DetailURL links to the list of games; empty unless Occurrences > 0.
	DetailURL string
}

// Inspect describes the cell at (w, l).
func (s *State) Inspect(w, l int) (Detail, error) {
	c, err := s.Cell(w, l)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{
		Score:       strconv.Itoa(w) + "-" + strconv.Itoa(l),
		Possible:    c.Possible(),
		Occurrences: c.Occurrences,
		LastGame:    c.LastGame,
		DetailURL:   c.DetailURL,
	}
	switch {
	case c.Observed():
		d.Message = occurrenceMessage(c.Occurrences, c.LastGame)
	case c.Possible():
		d.Scorigami = true
		d.Message = scorigamiMessage
	}
	return d, nil
}

func occurrenceMessage(n int, lastGame string) string {
	var b strings.Builder
	b.WriteString("A game has ended with this score ")
	b.WriteString(strconv.Itoa(n))
	b.WriteString(" time")
	if n != 1 {
		b.WriteString("s")
	}
	b.WriteString(".")
	if lastGame != "" {
		b.WriteString(" Most recently, this happened when the ")
		b.WriteString(lastGame)
	}
	return b.String()
}
