package api

import (
	"context"
	"fmt"

	"main/internal/session"
)

// AuditRequest approves or rejects a pending recipe.
type AuditRequest struct {
	RecipeID int64  `json:"recipeId"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// AuditLog is one backstage audit trail entry.
type AuditLog struct {
	ID        int64  `json:"id"`
	AdminID   int64  `json:"adminId"`
	Action    string `json:"action"`
	TargetID  int64  `json:"targetId"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"createdAt"`
}

// Dashboard is the backstage overview payload.
type Dashboard struct {
	UserCount          int64 `json:"userCount"`
	RecipeCount        int64 `json:"recipeCount"`
	PendingRecipeCount int64 `json:"pendingRecipeCount"`
	CommentCount       int64 `json:"commentCount"`
	OnlineUserCount    int64 `json:"onlineUserCount"`
}

// AdminDashboard fetches the backstage overview.
func (c *Client) AdminDashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.get(ctx, "/api/v1/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PendingRecipes lists recipes awaiting review.
func (c *Client) PendingRecipes(ctx context.Context, page Page) (*RecipePage, error) {
	var out RecipePage
	if err := c.get(ctx, "/api/v1/admin/recipes/audit", page.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuditRecipe approves or rejects a pending recipe.
func (c *Client) AuditRecipe(ctx context.Context, req AuditRequest) error {
	return c.post(ctx, "/api/v1/admin/recipes/audit", req, nil)
}

// AdminDeleteRecipe removes any recipe.
func (c *Client) AdminDeleteRecipe(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/admin/recipes/%d", id))
}

// AdminUsers lists accounts.
func (c *Client) AdminUsers(ctx context.Context, page Page) ([]session.User, error) {
	var out []session.User
	if err := c.get(ctx, "/api/v1/admin/users", page.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserStatus enables or disables one account.
func (c *Client) UpdateUserStatus(ctx context.Context, userID int64, enabled bool) error {
	body := map[string]any{"enabled": enabled}
	return c.put(ctx, fmt.Sprintf("/api/v1/admin/users/%d/status", userID), body, nil)
}

// AdminCategories lists categories for moderation.
func (c *Client) AdminCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, "/api/v1/admin/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCategory creates a category.
func (c *Client) AddCategory(ctx context.Context, name string) error {
	return c.post(ctx, "/api/v1/admin/categories", map[string]any{"name": name}, nil)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/admin/categories/%d", id))
}

// AuditLogs lists the backstage audit trail.
func (c *Client) AuditLogs(ctx context.Context, page Page) ([]AuditLog, error) {
	var out []AuditLog
	if err := c.get(ctx, "/api/v1/admin/logs", page.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
