package api

import (
	"context"
	"fmt"
)

// Category is a recipe category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Recipe is the list/detail payload.
type Recipe struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
	CategoryID  int64  `json:"categoryId"`
	AuthorID    int64  `json:"authorId"`
	AuthorName  string `json:"authorName"`
	Status      string `json:"status"`
	Likes       int    `json:"likes"`
	CreatedAt   string `json:"createdAt"`
}

// RecipePage is a paged recipe listing.
type RecipePage struct {
	Total   int64    `json:"total"`
	Records []Recipe `json:"records"`
}

// Categories fetches the public category list.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, "/api/v1/recipes/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recipes lists published recipes.
func (c *Client) Recipes(ctx context.Context, page Page) (*RecipePage, error) {
	var out RecipePage
	if err := c.get(ctx, "/api/v1/recipes/list", page.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecipeDetail fetches one recipe.
func (c *Client) RecipeDetail(ctx context.Context, id int64) (*Recipe, error) {
	var out Recipe
	if err := c.get(ctx, fmt.Sprintf("/api/v1/recipes/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecipe submits a recipe for review.
func (c *Client) CreateRecipe(ctx context.Context, recipe Recipe) error {
	return c.post(ctx, "/api/v1/recipes", recipe, nil)
}

// UpdateRecipe edits an owned recipe.
func (c *Client) UpdateRecipe(ctx context.Context, recipe Recipe) error {
	return c.put(ctx, "/api/v1/recipes", recipe, nil)
}

// DeleteRecipe removes an owned recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/recipes/%d", id))
}

// UnpublishRecipe withdraws a published recipe.
func (c *Client) UnpublishRecipe(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/api/v1/recipes/%d/unpublish", id), nil, nil)
}

// LikeRecipe toggles the favorite mark.
func (c *Client) LikeRecipe(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/api/v1/interactions/favorite/%d", id), nil, nil)
}
