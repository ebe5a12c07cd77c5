package coordinator_test

import (
	"context"
	"testing"

	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"pgregory.net/rapid"
)

func stepGen() *rapid.Generator[domain.StepDescriptor] {
	return rapid.Custom(func(t *rapid.T) domain.StepDescriptor {
		return domain.StepDescriptor{
			Target: rapid.StringMatching(`#[a-z]{1,8}`).Draw(t, "target"),
			Content: domain.StepContent{
				Title: rapid.String().Draw(t, "title"),
			},
			Placement: rapid.SampledFrom([]domain.Placement{
				domain.PlacementTop, domain.PlacementBottom, domain.PlacementLeft,
				domain.PlacementRight, domain.PlacementCenter,
			}).Draw(t, "placement"),
		}
	})
}

func TestProperty_StartLoadsExactly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		steps := rapid.SliceOf(stepGen()).Draw(t, "steps")
		tag := rapid.String().Draw(t, "tag")

		c := coordinator.New("s")
		c.Start(ctx, steps, tag)
		s := c.Session()

		if !s.Active || s.CurrentIndex != 0 || s.Tag != tag {
			t.Fatalf("unexpected session after start: %+v", s)
		}
		if len(s.Steps) != len(steps) {
			t.Fatalf("got %d steps, want %d", len(s.Steps), len(steps))
		}
		for i := range steps {
			if s.Steps[i] != steps[i] {
				t.Fatalf("step %d differs: %+v != %+v", i, s.Steps[i], steps[i])
			}
		}
	})
}

func TestProperty_IndexStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		c := coordinator.New("s")
		c.Start(ctx, rapid.SliceOfN(stepGen(), 1, 10).Draw(t, "steps"), "t")

		ops := rapid.SliceOf(rapid.IntRange(0, 4)).Draw(t, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				c.GoTo(ctx, rapid.IntRange(-100, 100).Draw(t, "index"))
			case 1:
				c.Next(ctx)
			case 2:
				c.Prev(ctx)
			case 3:
				c.Stop(ctx)
			case 4:
				c.Start(ctx, rapid.SliceOfN(stepGen(), 1, 10).Draw(t, "restart"), "t")
			}

			s := c.Session()
			if s.CurrentIndex < 0 || s.CurrentIndex > len(s.Steps)-1 {
				t.Fatalf("index %d out of range for %d steps", s.CurrentIndex, len(s.Steps))
			}
		}
	})
}

func TestProperty_StopIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		c := coordinator.New("s")
		c.Start(ctx, rapid.SliceOf(stepGen()).Draw(t, "steps"), "t")
		c.GoTo(ctx, rapid.Int().Draw(t, "index"))

		c.Stop(ctx)
		first := c.Session()
		for i := rapid.IntRange(1, 5).Draw(t, "repeats"); i > 0; i-- {
			c.Stop(ctx)
		}
		second := c.Session()

		if first.Active || second.Active {
			t.Fatal("session still active after stop")
		}
		if first.CurrentIndex != second.CurrentIndex || first.UpdatedAt != second.UpdatedAt {
			t.Fatal("repeated stop changed the session")
		}
	})
}
