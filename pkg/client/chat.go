package client

import (
	"context"
	"fmt"

	"github.com/evtb/evtb/pkg/domain"
)

// ChatHistory returns the conversations a user takes part in.
func (c *Client) ChatHistory(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	if err := c.get(ctx, idPath("/api/Chat/history", userID), &convs); err != nil {
		return nil, fmt.Errorf("client.ChatHistory: %w", err)
	}
	return convs, nil
}

// ChatMessages returns the messages of a conversation.
func (c *Client) ChatMessages(ctx context.Context, conversationID int64) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	if err := c.get(ctx, idPath("/api/Chat/messages", conversationID), &msgs); err != nil {
		return nil, fmt.Errorf("client.ChatMessages: %w", err)
	}
	return msgs, nil
}

// SendMessage posts a message to a conversation.
func (c *Client) SendMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	if msg.MessageType == "" {
		msg.MessageType = "text"
	}
	var sent domain.ChatMessage
	if err := c.post(ctx, "/api/Chat/send", msg, &sent); err != nil {
		return nil, fmt.Errorf("client.SendMessage: %w", err)
	}
	return &sent, nil
}

// CreateConversation opens a conversation between participants.
func (c *Client) CreateConversation(ctx context.Context, participants ...int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := c.post(ctx, "/api/Chat/conversation", map[string][]int64{"participants": participants}, &conv); err != nil {
		return nil, fmt.Errorf("client.CreateConversation: %w", err)
	}
	return &conv, nil
}

// StartConversationWithSeller opens a buyer/seller conversation and sends an
// opening message about the listing.
func (c *Client) StartConversationWithSeller(ctx context.Context, buyerID, sellerID, productID int64) (*domain.Conversation, error) {
	conv, err := c.CreateConversation(ctx, buyerID, sellerID)
	if err != nil {
		return nil, err
	}
	if conv.ID != 0 {
		_, err := c.SendMessage(ctx, domain.ChatMessage{
			ConversationID: conv.ID,
			SenderID:       buyerID,
			Message:        fmt.Sprintf("I'm interested in this listing (ID: %d). Could you tell me more about it?", productID),
		})
		if err != nil {
			return conv, fmt.Errorf("client.StartConversationWithSeller: %w", err)
		}
	}
	return conv, nil
}

// ConversationWith finds the conversation between two users, or nil.
func (c *Client) ConversationWith(ctx context.Context, userID, otherID int64) (*domain.Conversation, error) {
	convs, err := c.ChatHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if convs[i].HasParticipants(userID, otherID) {
			return &convs[i], nil
		}
	}
	return nil, nil
}
