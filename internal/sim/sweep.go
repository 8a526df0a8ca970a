package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/musclesim/internal/muscle"
)

// Case is one independent run in a Sweep.
type Case struct {
	Config Config
	Params muscle.Params
	Muscle MuscleState
	Joint  JointState
}

// Sweep runs every case on its own simulator concurrently. Results are in
// case order; the first error cancels the remaining runs.
func Sweep(ctx context.Context, cases []Case) ([]TimeHistory, error) {
	results := make([]TimeHistory, len(cases))
	g, ctx := errgroup.WithContext(ctx)

	for i, c := range cases {
		g.Go(func() error {
			h, err := RunSimulation(ctx, c.Config, c.Params, c.Muscle, c.Joint)
			if err != nil {
				return err
			}
			results[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
