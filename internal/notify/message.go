package notify

// Kind discriminates server push messages.
type Kind string

const (
	// KindConnected is the server's connection greeting; informational only.
	KindConnected Kind = "CONNECTED"
	// KindHeartbeat is reserved by the server enum; never observed as JSON
	// in practice (the keep-alive travels as a literal text frame).
	KindHeartbeat Kind = "HEARTBEAT"
	// KindForcedLogout is a server-directed session termination.
	KindForcedLogout Kind = "FORCED_LOGOUT"

	// KindUserOnline and KindUserOffline are presence signals, broadcast only.
	KindUserOnline  Kind = "USER_ONLINE"
	KindUserOffline Kind = "USER_OFFLINE"

	// Moderation pushes: broadcast for admin listeners AND logged/toasted.
	KindNewRecipePending Kind = "NEW_RECIPE_PENDING"
	KindAdminNewComment  Kind = "ADMIN_NEW_COMMENT"
	KindRecipeWithdrawn  Kind = "RECIPE_WITHDRAWN"

	KindNewMessage     Kind = "NEW_MESSAGE"
	KindRecipeApproved Kind = "RECIPE_APPROVED"
	KindRecipeRejected Kind = "RECIPE_REJECTED"
	KindNewFollower    Kind = "NEW_FOLLOWER"
	KindNewComment     Kind = "NEW_COMMENT"
	KindCommentReply   Kind = "COMMENT_REPLY"
	KindCommentLiked   Kind = "COMMENT_LIKED"
)

// Message is the push envelope. Unknown kinds are valid input and take the
// generic logging path.
type Message struct {
	Type         Kind   `json:"type"`
	Title        string `json:"title,omitempty"`
	Content      string `json:"content,omitempty"`
	RelatedID    int64  `json:"relatedId,omitempty"`
	SenderID     int64  `json:"senderId,omitempty"`
	SenderName   string `json:"senderName,omitempty"`
	SenderAvatar string `json:"senderAvatar,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}
