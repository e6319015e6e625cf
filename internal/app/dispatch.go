package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"safari_tours/internal/domain"
)

const defaultWorkers = 4

// SendResult is the outcome of one email task.
type SendResult struct {
	To  string
	Err error
}

// fanOut sends every email as its own task, at most `workers` at a time,
// and returns one result per input in input order. It never returns early
// on a failed send.
func fanOut(ctx context.Context, m domain.Mailer, workers int, emails []domain.Email) []SendResult {
	if workers <= 0 {
		workers = defaultWorkers
	}
	results := make([]SendResult, len(emails))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, e := range emails {
		results[i].To = e.To
		if m == nil {
			results[i].Err = domain.ErrNotConfigured
			continue
		}
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		go func(i int, e domain.Email) {
			defer wg.Done()
			defer sem.Release(1)
			results[i].Err = m.Send(ctx, e)
		}(i, e)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("to", r.To).Msg("email send failed")
		}
	}
	return results
}

func tally(rs []SendResult) (sent, failed int) {
	for _, r := range rs {
		if r.Err != nil {
			failed++
		} else {
			sent++
		}
	}
	return sent, failed
}
