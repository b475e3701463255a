package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
)

const dateLayout = "2006-01-02"

func resolveProjectID(ctx context.Context, a *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project ID is required (use --project)")
	}
	p, err := a.Projects.Resolve(ctx, input)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// resolveUser accepts an email address or a user ID.
func resolveUser(ctx context.Context, a *App, input string) (*domain.User, error) {
	if strings.Contains(input, "@") {
		return a.Users.GetByEmail(ctx, input)
	}
	return a.Users.GetByID(ctx, input)
}

func resolveUserID(ctx context.Context, a *App, input string) (string, error) {
	u, err := resolveUser(ctx, a, input)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// userIndex maps user IDs to users for display.
func userIndex(ctx context.Context, a *App) (map[string]*domain.User, error) {
	users, err := a.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*domain.User, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, domain.Invalidf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &t, nil
}

func ptr[T any](v T) *T {
	return &v
}
