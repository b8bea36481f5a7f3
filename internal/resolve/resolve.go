// Package resolve reconciles email-keyed sales lines against the durable
// customer identities held by the store. The store assigns its own ids on
// first insert, so source ids are never trusted past the transform join;
// the email is the only identity a line carries into this stage.
package resolve

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"fleximart/internal/domain"
	"fleximart/internal/normalize"
	"fleximart/internal/transform"
)

// Directory is the narrow store capability the resolver needs: the current
// email-to-durable-id mapping, and an idempotent insert for stub customers.
// Keeping it this small lets the resolver run against an in-memory fake.
type Directory interface {
	CustomerIDsByEmail(ctx context.Context) (map[string]int64, error)
	InsertCustomersAssignID(ctx context.Context, customers []domain.Customer) error
}

// Result carries the resolved lines plus the counters the run report needs.
type Result struct {
	Lines        []domain.SalesLine
	Stats        transform.Stats
	StubsCreated int
}

// Resolve assigns a durable customer id to every sales line it returns.
//
// Pass one is a straight lookup against the store's email map. Lines that
// miss get a stub path: a line with no email at all receives a synthesized
// placeholder, and a minimal "Guest" customer row is inserted for every
// unresolved email. The insert is idempotent (insert-ignore on duplicate
// email), so racing writers produce a harmless conflict rather than an
// error. The mapping is then refreshed and resolution retried once. Lines
// that still miss are dropped and logged at error level; that is a data
// defect, not a run failure.
func Resolve(ctx context.Context, dir Directory, lines []domain.SalesLine, log *logrus.Entry) (Result, error) {
	res := Result{}

	byEmail, err := dir.CustomerIDsByEmail(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch customer email map: %w", err)
	}

	work := make([]domain.SalesLine, len(lines))
	copy(work, lines)

	var pendingIdx []int
	var stubs []domain.Customer
	stubbed := make(map[string]struct{})

	for i := range work {
		line := &work[i]
		if line.Email != nil {
			if id, ok := byEmail[*line.Email]; ok {
				line.CustomerID = id
				continue
			}
		} else {
			// No identity at all: synthesize a placeholder the stub insert
			// and the retry lookup will share.
			synth := normalize.SynthesizeEmail(nil)
			line.Email = &synth
		}
		if _, dup := stubbed[*line.Email]; !dup {
			stubbed[*line.Email] = struct{}{}
			stubs = append(stubs, domain.Customer{
				FirstName: "Guest",
				LastName:  "Customer",
				Email:     *line.Email,
			})
		}
		pendingIdx = append(pendingIdx, i)
	}

	if len(pendingIdx) > 0 {
		if err := dir.InsertCustomersAssignID(ctx, stubs); err != nil {
			return res, fmt.Errorf("insert stub customers: %w", err)
		}
		res.StubsCreated = len(stubs)

		byEmail, err = dir.CustomerIDsByEmail(ctx)
		if err != nil {
			return res, fmt.Errorf("refresh customer email map: %w", err)
		}
		for _, i := range pendingIdx {
			line := &work[i]
			if id, ok := byEmail[*line.Email]; ok {
				line.CustomerID = id
			}
		}
	}

	// Keep resolved lines in arrival order; the loader's "first line of the
	// transaction" semantics depend on it.
	res.Lines = make([]domain.SalesLine, 0, len(work))
	dropped := 0
	for _, line := range work {
		if line.CustomerID == 0 {
			dropped++
			continue
		}
		res.Lines = append(res.Lines, line)
	}
	if dropped > 0 {
		res.Stats.MissingHandled += dropped
		log.WithField("stage", "load").Errorf("sales rows dropped after customer remap: %d", dropped)
	}
	return res, nil
}
