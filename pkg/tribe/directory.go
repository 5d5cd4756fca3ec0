package tribe

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Directory lists the tribes known to a factory.
type Directory struct {
	factory Factory
}

func NewDirectory(factory Factory) *Directory {
	return &Directory{factory: factory}
}

// DirectoryView holds the "all" and "created by me" lists.
type DirectoryView struct {
	All     Field[[]common.Address]
	Created Field[[]common.Address]
}

// AllEmpty reports whether the loaded "all" list has no tribes.
func (v DirectoryView) AllEmpty() bool {
	all, ok := v.All.Get()
	return ok && len(all) == 0
}

// CreatedEmpty reports whether the loaded "created" list has no tribes.
func (v DirectoryView) CreatedEmpty() bool {
	created, ok := v.Created.Get()
	return ok && len(created) == 0
}

// All fetches every tribe, deduplicated.
func (d *Directory) All(ctx context.Context) ([]common.Address, error) {
	addrs, err := d.factory.Tribes(ctx)
	if err != nil {
		return nil, err
	}
	return Dedup(addrs), nil
}

// Created fetches the tribes created by user, deduplicated.
func (d *Directory) Created(ctx context.Context, user common.Address) ([]common.Address, error) {
	addrs, err := d.factory.CreatorTribes(ctx, user)
	if err != nil {
		return nil, err
	}
	return Dedup(addrs), nil
}

// Load reads both lists concurrently. Without a user the created list
// stays loading.
func (d *Directory) Load(ctx context.Context, user *common.Address) DirectoryView {
	var view DirectoryView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := d.All(gctx)
		if err != nil {
			view.All = Field[[]common.Address]{State: FieldFailed, Err: err}
			return nil
		}
		view.All = readyField(all)
		return nil
	})
	if user != nil {
		u := *user
		g.Go(func() error {
			created, err := d.Created(gctx, u)
			if err != nil {
				view.Created = Field[[]common.Address]{State: FieldFailed, Err: err}
				return nil
			}
			view.Created = readyField(created)
			return nil
		})
	}
	_ = g.Wait()
	return view
}

// Dedup removes repeated addresses, keeping first-seen order.
func Dedup(addrs []common.Address) []common.Address {
	seen := make(map[common.Address]struct{}, len(addrs))
	out := make([]common.Address, 0, len(addrs))
	for _, a := range addrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
