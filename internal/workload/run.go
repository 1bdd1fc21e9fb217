package workload

import (
	"context"

	"appendlist/internal/concurrent"
	"appendlist/internal/state"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	ProbeID  = "probe"
	VerifyID = "verify"
)

// Result of a run. Failure holds the out of range error of the probe, if
// any; it is reported but doesn't fail the run
type Result struct {
	Readings []Reading[int]
	Failure  error
	Total    int
}

// Run fills a shared list with one worker per range and, once every worker
// is done, probes it for the configured indices
func Run(ctx context.Context, config *state.Config) (*Result, error) {
	list := concurrent.NewSlice[int]()
	ranges := Partition(config.Workers, config.PerWorker)
	coordinator := concurrent.NewCoordinator(ctx, config.Parallelism)
	workers := Fill(coordinator, list, ranges)

	result := &Result{}
	coordinator.Do(ProbeID, workers, func() error {
		result.Readings, result.Failure = Probe(list, config.Probes)
		return nil
	})

	if config.Verify {
		coordinator.Do(VerifyID, workers, func() error {
			return Verify(list, ranges)
		})
	}

	if err := coordinator.Wait(); err != nil {
		return nil, errors.Wrap(err, "running workload")
	}

	result.Total = list.Len()
	log.WithFields(log.Fields{
		"workers": len(workers),
		"total":   result.Total,
	}).Debug("workers joined")
	return result, nil
}
