// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package steps

import (
	"github.com/similigh/gitssues/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("sprint_resolver", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewSprintResolver(deps), nil
	})

	r.Register("ticket_creator", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewTicketCreator(deps), nil
	})

	r.Register("sprint_placer", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewSprintPlacer(deps), nil
	})

	r.Register("assignee_resolver", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewAssigneeResolver(deps), nil
	})

	r.Register("assigner", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewAssigner(deps), nil
	})
}
