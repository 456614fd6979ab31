package cli

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/feed"
)

// pickRoutes asks the user which trips to build. Trips with the same label
// are offered once, and the selection is confirmed before it is returned.
func pickRoutes(ctx context.Context, cands []feed.Candidate) ([]feed.Candidate, error) {
	options := uniqueByLabel(cands)

	for {
		var picked []int
		form := huh.NewForm(huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Routes to build").
				Description("space selects, enter confirms").
				Options(routeOptions(options)...).
				Height(15).
				Value(&picked).
				Validate(func(v []int) error {
					if len(v) == 0 {
						return stderrors.New("At least one route must be selected")
					}
					return nil
				}),
		))
		if err := form.RunWithContext(ctx); err != nil {
			return nil, abortErr(err)
		}

		chosen := make([]feed.Candidate, 0, len(picked))
		for _, i := range picked {
			chosen = append(chosen, options[i])
		}

		printInfo("Selected %d routes", len(chosen))
		for _, c := range chosen {
			printDetail("%s", c.String())
		}

		ok := true
		confirm := huh.NewConfirm().
			Title("Build these routes?").
			Affirmative("Build").
			Negative("Choose again").
			Value(&ok)
		if err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx); err != nil {
			return nil, abortErr(err)
		}
		if ok {
			return chosen, nil
		}
	}
}

func routeOptions(cands []feed.Candidate) []huh.Option[int] {
	opts := make([]huh.Option[int], len(cands))
	for i, c := range cands {
		opts[i] = huh.NewOption(c.String(), i)
	}
	return opts
}

// abortErr turns an aborted form into a cancellation so the command exits
// quietly.
func abortErr(err error) error {
	if stderrors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("route selection: %w", context.Canceled)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "route selection")
}

// uniqueByLabel keeps one candidate per label, preferring the trip with the
// most stops and then the smallest trip ID. The result is sorted by label.
func uniqueByLabel(cands []feed.Candidate) []feed.Candidate {
	best := make(map[string]feed.Candidate)
	for _, c := range cands {
		label := c.String()
		cur, ok := best[label]
		if !ok || len(c.Stops) > len(cur.Stops) ||
			(len(c.Stops) == len(cur.Stops) && c.Trip < cur.Trip) {
			best[label] = c
		}
	}

	out := make([]feed.Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b feed.Candidate) int {
		return cmp.Or(cmp.Compare(a.String(), b.String()), cmp.Compare(a.Trip, b.Trip))
	})
	return out
}
