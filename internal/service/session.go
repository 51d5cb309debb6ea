package service

import (
	"context"
	"strings"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// CreateSessionRequest opens a game session for a character.
type CreateSessionRequest struct {
	CharacterID  string  `json:"characterId"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	CurrentScene *string `json:"currentScene,omitempty"`
}

// PostMessageRequest adds a chat line to a session.
type PostMessageRequest struct {
	Sender      string                 `json:"sender"`
	Content     string                 `json:"content"`
	MessageType string                 `json:"messageType"`
	Metadata    *model.MessageMetadata `json:"metadata,omitempty"`
}

// SessionService manages game sessions and their chat history.
type SessionService struct {
	characters   store.CharacterStore
	sessions     store.SessionStore
	messages     store.MessageStore
	historyLimit int
}

// NewSessionService creates a new SessionService instance.
func NewSessionService(stores *Stores, historyLimit int) *SessionService {
	return &SessionService{
		characters:   stores.Characters,
		sessions:     stores.Sessions,
		messages:     stores.Messages,
		historyLimit: historyLimit,
	}
}

// Create opens an active session for an existing character.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*model.GameSession, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalidf("session title is required")
	}
	if _, err := s.characters.Get(ctx, req.CharacterID); err != nil {
		return nil, storageErr("get character", err)
	}

	session, err := s.sessions.Create(ctx, &model.GameSession{
		CharacterID:  req.CharacterID,
		Title:        title,
		Description:  req.Description,
		CurrentScene: req.CurrentScene,
		IsActive:     true,
	})
	if err != nil {
		return nil, storageErr("create session", err)
	}
	return session, nil
}

// Get retrieves a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*model.GameSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, storageErr("get session", err)
	}
	return session, nil
}

// Messages returns the latest messages of a session, oldest first.
// limit <= 0 uses the configured history limit.
func (s *SessionService) Messages(ctx context.Context, sessionID string, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, storageErr("get session", err)
	}
	messages, err := s.messages.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, storageErr("list messages", err)
	}
	return messages, nil
}

// PostMessage appends a message to a session. An empty message type is text.
func (s *SessionService) PostMessage(ctx context.Context, sessionID string, req PostMessageRequest) (*model.Message, error) {
	if req.MessageType == "" {
		req.MessageType = model.MessageTypeText
	}
	if !model.IsValidSender(req.Sender) {
		return nil, invalidf("unknown sender %q", req.Sender)
	}
	if !model.IsValidMessageType(req.MessageType) {
		return nil, invalidf("unknown message type %q", req.MessageType)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, invalidf("message content is required")
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, storageErr("get session", err)
	}

	return s.appendMessage(ctx, &model.Message{
		SessionID:   sessionID,
		Sender:      req.Sender,
		Content:     req.Content,
		MessageType: req.MessageType,
		Metadata:    req.Metadata,
	})
}

func (s *SessionService) appendMessage(ctx context.Context, m *model.Message) (*model.Message, error) {
	created, err := s.messages.Create(ctx, m)
	if err != nil {
		return nil, storageErr("create message", err)
	}
	return created, nil
}
