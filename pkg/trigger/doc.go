/*
Package trigger implements the affordances that start a tour.

All three variants behave the same way on activation: they resolve the tour's
steps from a ports.StepRegistry and call Start on the coordinator provided to
the context. They differ only in markup. Activating a trigger outside a
coordinator.NewContext scope panics with domain.ErrNotProvided.

	ctx = coordinator.NewContext(ctx, c)
	btn := trigger.NewIconButton(reg, registry.TourAdminDashboard)
	_ = btn.Activate(ctx)
*/
package trigger
