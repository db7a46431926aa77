package services

import (
	"context"
	"fmt"

	"carteira/internal/api"
	"carteira/internal/core"
)

type Categories struct {
	api *api.Client
}

func NewCategories(client *api.Client) *Categories {
	return &Categories{api: client}
}

// Active returns the enabled categories of one side of the ledger, with
// display icons filled in.
func (c *Categories) Active(ctx context.Context, earn bool) ([]core.Category, error) {
	filter := api.ExpenseCategories
	if earn {
		filter = api.IncomeCategories
	}
	cats, err := c.api.Categories(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return core.WithIcons(core.FilterCategories(core.ActiveCategories(cats), earn)), nil
}

// All returns every category, disabled ones included, for the management page.
func (c *Categories) All(ctx context.Context) ([]core.Category, error) {
	cats, err := c.api.Categories(ctx, api.AllCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return core.WithIcons(cats), nil
}

func (c *Categories) Create(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	cat, err := c.api.CreateCategory(ctx, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (c *Categories) Update(ctx context.Context, uuid string, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	cat, err := c.api.UpdateCategory(ctx, uuid, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %s: %w", uuid, err)
	}
	return cat, nil
}
