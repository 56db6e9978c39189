package domain

import "time"

// Favorite links a user to a saved listing.
type Favorite struct {
	ID        int64     `json:"favoriteId"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	CreatedAt time.Time `json:"createdDate,omitempty"`
}

// Conversation is a chat between two or more users.
type Conversation struct {
	ID           int64     `json:"id"`
	Participants []int64   `json:"participants"`
	LastMessage  string    `json:"lastMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// HasParticipants reports whether every given user takes part in the conversation.
func (c *Conversation) HasParticipants(ids ...int64) bool {
	for _, id := range ids {
		found := false
		for _, p := range c.Participants {
			if p == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	ID             int64     `json:"id,omitempty"`
	ConversationID int64     `json:"conversationId"`
	SenderID       int64     `json:"senderId"`
	Message        string    `json:"message"`
	MessageType    string    `json:"messageType,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// Review is a buyer's rating of a listing or seller.
type Review struct {
	ID         int64     `json:"reviewId,omitempty"`
	ProductID  int64     `json:"productId"`
	ReviewerID int64     `json:"reviewerId"`
	Rating     int       `json:"rating"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"createdDate,omitempty"`
}
