package seed

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// publicActions lists the read actions granted to the public role, per
// collection. Single types only need find.
var publicActions = map[string][]string{
	simplecms.CollectionArticle:  {simplecms.ActionFind, simplecms.ActionFindOne},
	simplecms.CollectionCategory: {simplecms.ActionFind, simplecms.ActionFindOne},
	simplecms.CollectionAuthor:   {simplecms.ActionFind, simplecms.ActionFindOne},
	simplecms.CollectionGlobal:   {simplecms.ActionFind},
	simplecms.CollectionAbout:    {simplecms.ActionFind},
}

// setPublicPermissions grants the public role read access to every default
// collection. One grant runs per (collection, action) pair, all in flight
// together; the first failure stops the batch and is returned, and grants
// already made stay in place.
func (s *Seeder) setPublicPermissions(ctx context.Context) error {
	role, err := s.svc.GetRole(ctx, simplecms.RolePublic)
	if err != nil {
		return fmt.Errorf("look up public role: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for collection, verbs := range publicActions {
		for _, verb := range verbs {
			action := simplecms.PermissionAction(collection, verb)
			g.Go(func() error {
				if _, err := s.svc.GrantPermission(ctx, role.ID, action); err != nil {
					return fmt.Errorf("grant %s to public role: %w", action, err)
				}
				return nil
			})
		}
	}
	return g.Wait()
}
