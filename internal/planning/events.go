package planning

import (
	"context"
	"fmt"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// maxEventLimit caps how many audit events one call returns.
const maxEventLimit = 1000

// ListEvents returns the most recent audit events of a project, newest
// first. A limit of 0 uses the store default.
func (s *Service) ListEvents(ctx context.Context, projectID string, limit int) ([]*model.Event, error) {
	if limit < 0 || limit > maxEventLimit {
		return nil, newError(InvalidArgument, "limit must be between 0 and %d", maxEventLimit)
	}
	if _, err := s.projectScope(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	evs, err := s.store.ListEvents(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events of project %s: %w", projectID, err)
	}
	if evs == nil {
		evs = []*model.Event{}
	}
	return evs, nil
}
