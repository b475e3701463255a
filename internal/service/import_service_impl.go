package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/importer"
	"github.com/alexanderramin/taskup/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	scale    calc.SeverityScale
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, scale calc.SeverityScale, observers ...UseCaseObserver) ImportService {
	if scale.Name == "" {
		scale = calc.DefaultScale
	}
	return &importService{uow: uow, scale: scale, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	doc, err := importer.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFoundf("import file %s", path)
	}
	if err != nil {
		return nil, importParseError(err)
	}
	return s.ImportDocument(ctx, doc)
}

func (s *importService) Import(ctx context.Context, data []byte, format importer.Format) (*ImportResult, error) {
	doc, err := importer.Parse(data, format)
	if err != nil {
		return nil, importParseError(err)
	}
	return s.ImportDocument(ctx, doc)
}

func importParseError(err error) error {
	var se *importer.SchemaError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return fmt.Errorf("%w: loading import file: %w", domain.ErrValidation, err)
}

// ImportDocument writes the whole document in one transaction; any failure
// leaves the database untouched.
func (s *importService) ImportDocument(ctx context.Context, doc *importer.Document) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"short_id": doc.Project.ShortID}
	defer observe(ctx, s.observer, "import-project", startedAt, fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		users := repository.NewSQLiteUserRepo(tx)

		existing := make(map[string]bool)
		userIDs := make(map[string]string)
		for _, email := range doc.ReferencedEmails() {
			u, err := users.GetByEmail(ctx, email)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			existing[email] = true
			userIDs[email] = u.ID
		}

		if errs := importer.Validate(doc, existing); len(errs) > 0 {
			fields["problems"] = len(errs)
			return importer.Join(errs)
		}

		created := 0
		for _, ui := range doc.Users {
			email := importer.NormalizeEmail(ui.Email)
			if _, ok := userIDs[email]; ok {
				continue
			}
			u := &domain.User{ID: uuid.New().String(), Email: email, Name: ui.Name, CreatedAt: startedAt}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("creating user %s: %w", email, err)
			}
			userIDs[email] = u.ID
			created++
		}

		bundle, err := importer.Convert(doc, userIDs, s.scale, startedAt)
		if err != nil {
			return err
		}
		if err := authorizeImport(ctx, bundle.Project); err != nil {
			return err
		}
		if err := writeBundle(ctx, tx, bundle); err != nil {
			return err
		}

		result = &ImportResult{
			Project:          bundle.Project,
			UsersCreated:     created,
			StakeholderCount: len(bundle.Stakeholders),
			RiskCount:        len(bundle.Risks),
			PlanCount:        len(bundle.Plans),
			TaskCount:        len(bundle.Tasks),
			ResourceCount:    len(bundle.Resources),
			WorkPackageCount: len(bundle.WorkPackages),
		}
		fields["tasks"] = result.TaskCount
		fields["risks"] = result.RiskCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// authorizeImport lets a user import only projects they will own.
func authorizeImport(ctx context.Context, p *domain.Project) error {
	if actor.IsSystem(ctx) {
		return nil
	}
	userID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if userID != p.OwnerID {
		return fmt.Errorf("%w: the acting user must be the imported project's owner", domain.ErrForbidden)
	}
	return nil
}

func writeBundle(ctx context.Context, tx db.DBTX, b *importer.Bundle) error {
	if err := repository.NewSQLiteProjectRepo(tx).Create(ctx, b.Project); err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	stakes := repository.NewSQLiteStakeholderRepo(tx)
	for _, st := range b.Stakeholders {
		ok, err := stakes.CreateWithinCap(ctx, st, calc.CapWithTolerance())
		if err != nil {
			return fmt.Errorf("creating stakeholder: %w", err)
		}
		if !ok {
			return lostRace(ctx, stakes, st)
		}
	}

	risks := repository.NewSQLiteRiskRepo(tx)
	for _, r := range b.Risks {
		if err := risks.Create(ctx, r); err != nil {
			return fmt.Errorf("creating risk %q: %w", r.Name, err)
		}
	}
	for _, p := range b.Plans {
		if err := risks.CreatePlan(ctx, p); err != nil {
			return fmt.Errorf("creating risk response plan: %w", err)
		}
	}

	tasks := repository.NewSQLiteTaskRepo(tx)
	for _, t := range b.Tasks {
		if err := tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("creating task %q: %w", t.Title, err)
		}
	}

	resources := repository.NewSQLiteResourceRepo(tx)
	for _, r := range b.Resources {
		if err := resources.Create(ctx, r); err != nil {
			return fmt.Errorf("creating resource %q: %w", r.Name, err)
		}
	}

	wps := repository.NewSQLiteWorkPackageRepo(tx)
	for _, w := range b.WorkPackages {
		if err := wps.Create(ctx, w); err != nil {
			return fmt.Errorf("creating work package %q: %w", w.Name, err)
		}
	}
	return nil
}
