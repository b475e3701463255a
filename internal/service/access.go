package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type accessRule int

const (
	// ownerOnly covers project settings and stakeholder shares.
	ownerOnly accessRule = iota
	// membersOnly lets the owner and any stakeholder write.
	membersOnly
)

func requireActor(ctx context.Context) (string, error) {
	if id, ok := actor.UserID(ctx); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: no acting user", domain.ErrUnauthenticated)
}

// authorizeProject loads the project through tx and checks that the acting
// user may write to it under rule. Archived projects are read-only.
func authorizeProject(ctx context.Context, tx db.DBTX, projectID string, rule accessRule) (*domain.Project, error) {
	p, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.IsArchived() {
		return nil, fmt.Errorf("%w: project %s is archived", domain.ErrConflict, p.DisplayID())
	}
	if actor.IsSystem(ctx) {
		return p, nil
	}

	userID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if userID == p.OwnerID {
		return p, nil
	}
	if rule == membersOnly {
		stakes, err := repository.NewSQLiteStakeholderRepo(tx).ListByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, s := range stakes {
			if s.UserID == userID {
				return p, nil
			}
		}
		return nil, fmt.Errorf("%w: user %s is not a member of project %s", domain.ErrForbidden, userID, p.DisplayID())
	}
	return nil, fmt.Errorf("%w: only the owner of project %s may do this", domain.ErrForbidden, p.DisplayID())
}
