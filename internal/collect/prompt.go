package collect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vbonduro/emulsion/internal/board"
	"github.com/vbonduro/emulsion/internal/domain"
	"github.com/vbonduro/emulsion/internal/lifecycle"
)

// Prompt asks on a line-oriented terminal. Answering "q" or closing the
// input dismisses the prompt; invalid answers are asked again.
type Prompt struct {
	in    *bufio.Reader
	out   io.Writer
	today func() domain.Date
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out, today: domain.Today}
}

// CollectDate defaults to today on an empty answer.
func (p *Prompt) CollectDate(ctx context.Context, roll *domain.Roll, kind lifecycle.Collector) (domain.Date, error) {
	today := p.today()
	label := "Load date"
	if kind == lifecycle.CollectUnloadDate {
		label = "Unload date"
	}
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("%s for %s [%s]: ", label, roll.FilmStockName, today))
		if err != nil {
			return domain.Date{}, err
		}
		if answer == "" {
			return today, nil
		}
		d, err := domain.ParseDate(answer)
		if err == nil && kind == lifecycle.CollectUnloadDate && roll.DateLoaded != nil && d.Before(*roll.DateLoaded) {
			err = fmt.Errorf("must not be before the load date %s", roll.DateLoaded)
		}
		if err == nil {
			return d, nil
		}
		p.say("  %v\n", err)
	}
}

// CollectChemistry lists the active batches and takes a number.
func (p *Prompt) CollectChemistry(ctx context.Context, roll *domain.Roll, active []*domain.ChemistryBatch) (string, error) {
	if len(active) == 0 {
		p.say("No active chemistry batches. Create one with `emulsionctl chem add`.\n")
		return "", board.ErrCancelled
	}
	p.say("Chemistry for %s:\n", roll.FilmStockName)
	for i, b := range active {
		p.say("  %d) %s (%s, %d rolls)\n", i+1, b.Name, b.ChemistryType, b.RollsDeveloped)
	}
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("Batch [1-%d]: ", len(active)))
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(active) {
			return active[n-1].ID, nil
		}
		p.say("  pick a number between 1 and %d\n", len(active))
	}
}

// CollectRating takes stars, then an optional actual exposure count.
func (p *Prompt) CollectRating(ctx context.Context, roll *domain.Roll) (board.Rating, error) {
	var r board.Rating
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("Stars for %s [1-5]: ", roll.FilmStockName))
		if err != nil {
			return r, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && domain.ValidateRating(n, nil) == nil {
			r.Stars = n
			break
		}
		p.say("  stars must be between 1 and 5\n")
	}
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("Actual exposures [%d]: ", roll.ExpectedExposures))
		if err != nil {
			return r, err
		}
		if answer == "" {
			return r, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			r.ActualExposures = &n
			return r, nil
		}
		p.say("  exposures must be a positive number\n")
	}
}

// ask prints question and returns the trimmed answer, or ErrCancelled when
// the user quits or input ends.
func (p *Prompt) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.say("%s", question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			p.say("\n")
			return "", board.ErrCancelled
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.TrimSpace(line)
	if strings.EqualFold(answer, "q") {
		return "", board.ErrCancelled
	}
	return answer, nil
}

func (p *Prompt) say(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}
