package api

import (
	"context"
	"fmt"
)

// Comment is a recipe comment or reply.
type Comment struct {
	ID        int64  `json:"id"`
	RecipeID  int64  `json:"recipeId"`
	ParentID  int64  `json:"parentId,omitempty"`
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	Content   string `json:"content"`
	Likes     int    `json:"likes"`
	CreatedAt string `json:"createdAt"`
}

// DirectMessage is one private message between two users.
type DirectMessage struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"createdAt"`
}

// Conversation is one entry in the messages overview.
type Conversation struct {
	UserID      int64  `json:"userId"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"lastMessage"`
	UnreadCount int    `json:"unreadCount"`
}

// ToggleFollow follows or unfollows a user.
func (c *Client) ToggleFollow(ctx context.Context, userID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/v1/social/follow/%d", userID), nil, nil)
}

// Comments lists comments on a recipe.
func (c *Client) Comments(ctx context.Context, recipeID int64, page Page) ([]Comment, error) {
	var out []Comment
	if err := c.get(ctx, fmt.Sprintf("/api/v1/interactions/comments/%d", recipeID), page.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CommentRecipe posts a comment or reply.
func (c *Client) CommentRecipe(ctx context.Context, comment Comment) error {
	return c.post(ctx, "/api/v1/interactions/comments", comment, nil)
}

// LikeComment toggles a comment like.
func (c *Client) LikeComment(ctx context.Context, commentID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/v1/interactions/comments/%d/like", commentID), nil, nil)
}

// DeleteComment removes an owned comment.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/interactions/comments/%d", commentID))
}

// Messages lists the direct-message history with one user.
func (c *Client) Messages(ctx context.Context, userID int64, page Page) ([]DirectMessage, error) {
	var out []DirectMessage
	if err := c.get(ctx, fmt.Sprintf("/api/v1/social/messages/%d", userID), page.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage sends a direct message.
func (c *Client) SendMessage(ctx context.Context, receiverID int64, content string) error {
	body := map[string]any{"receiverId": receiverID, "content": content}
	return c.post(ctx, "/api/v1/social/messages", body, nil)
}

// Conversations lists the messages overview.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	if err := c.get(ctx, "/api/v1/social/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkConversationRead marks every message from a sender as read.
// The conversation view calls this together with Dispatcher.SetChatPartner.
func (c *Client) MarkConversationRead(ctx context.Context, senderID int64) error {
	return c.put(ctx, fmt.Sprintf("/api/v1/social/messages/read/%d", senderID), nil, nil)
}
