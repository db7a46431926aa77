package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"carteira/internal/api"
	"carteira/internal/core"
)

// Profile is the user header plus gamification pages.
type Profile struct {
	api *api.Client
}

func NewProfile(client *api.Client) *Profile {
	return &Profile{api: client}
}

// UserView is what the profile page and the navbar badge render.
type UserView struct {
	User  core.UserInfo
	Medal string
}

func (p *Profile) Me(ctx context.Context) (UserView, error) {
	u, err := p.api.Me(ctx)
	if err != nil {
		return UserView{}, fmt.Errorf("load profile: %w", err)
	}
	return UserView{User: u, Medal: core.MedalFor(u.Rank)}, nil
}

func (p *Profile) Update(ctx context.Context, in core.ProfileUpdate) error {
	if err := p.api.UpdateProfile(ctx, in); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (p *Profile) Missions(ctx context.Context) ([]core.Mission, error) {
	return p.api.Missions(ctx)
}

func (p *Profile) Achievements(ctx context.Context) ([]core.Achievement, error) {
	return p.api.Achievements(ctx)
}

// Gamification loads the user with missions and achievements in parallel.
type Gamification struct {
	UserView
	Missions     []core.Mission
	Achievements []core.Achievement
}

func (p *Profile) Gamification(ctx context.Context) (Gamification, error) {
	var out Gamification
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := p.Me(gctx)
		out.UserView = v
		return err
	})
	g.Go(func() error {
		var err error
		out.Missions, err = p.api.Missions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.Achievements, err = p.api.Achievements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Gamification{}, err
	}
	return out, nil
}
