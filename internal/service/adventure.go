package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"dungeon-master/internal/model"
	"dungeon-master/internal/narrator"
	"dungeon-master/internal/store"
)

const defaultAdventureType = "fantasy"

// StartAdventureRequest asks the narrator to open a new adventure.
type StartAdventureRequest struct {
	CharacterID   string `json:"characterId"`
	AdventureType string `json:"adventureType"`
}

// StartAdventureResult is the new session and its opening text.
type StartAdventureResult struct {
	Session        *model.GameSession `json:"session"`
	InitialMessage string             `json:"initialMessage"`
}

// TurnRequest is a player action in a session.
type TurnRequest struct {
	SessionID    string                `json:"sessionId"`
	CharacterID  string                `json:"characterId"`
	PlayerAction string                `json:"playerAction"`
	DiceRoll     *model.DiceRollResult `json:"diceRoll,omitempty"`
}

// TurnResult is the narrator's turn and the experience it granted, if any.
type TurnResult struct {
	*narrator.Response
	Award *AwardResult `json:"award,omitempty"`
}

// NarratorLimits bounds the history handed to the narrator.
type NarratorLimits struct {
	Messages int
	Context  int
}

// AdventureService runs Dungeon Master turns.
type AdventureService struct {
	characters  store.CharacterStore
	sessions    store.SessionStore
	messages    store.MessageStore
	contexts    store.ContextStore
	narrator    narrator.Narrator
	progression *ProgressionService
	limits      NarratorLimits
}

// NewAdventureService creates a new AdventureService instance.
func NewAdventureService(
	stores *Stores,
	n narrator.Narrator,
	progression *ProgressionService,
	limits NarratorLimits,
) *AdventureService {
	return &AdventureService{
		characters:  stores.Characters,
		sessions:    stores.Sessions,
		messages:    stores.Messages,
		contexts:    stores.Contexts,
		narrator:    n,
		progression: progression,
		limits:      limits,
	}
}

// Start generates an opening scene, opens a session for it and records the
// opening as the first Dungeon Master message.
func (s *AdventureService) Start(ctx context.Context, req StartAdventureRequest) (*StartAdventureResult, error) {
	adventureType := strings.TrimSpace(req.AdventureType)
	if adventureType == "" {
		adventureType = defaultAdventureType
	}

	character, err := s.characters.Get(ctx, req.CharacterID)
	if err != nil {
		return nil, storageErr("get character", err)
	}

	scene, err := s.narrator.InitialScene(ctx, narrator.SceneRequest{
		CharacterName:  character.Name,
		CharacterClass: character.Class,
		AdventureType:  adventureType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNarratorUnavailable, err)
	}

	session, err := s.sessions.Create(ctx, &model.GameSession{
		CharacterID:  character.ID,
		Title:        scene.Title,
		Description:  &scene.Description,
		CurrentScene: &scene.Scene,
		IsActive:     true,
	})
	if err != nil {
		return nil, storageErr("create session", err)
	}

	if _, err := s.messages.Create(ctx, &model.Message{
		SessionID:   session.ID,
		Sender:      model.SenderDM,
		Content:     scene.Scene,
		MessageType: model.MessageTypeText,
	}); err != nil {
		return nil, storageErr("create message", err)
	}

	log.Info().
		Str("character_id", character.ID).
		Str("session_id", session.ID).
		Str("adventure_type", adventureType).
		Msg("Adventure started")

	return &StartAdventureResult{Session: session, InitialMessage: scene.Scene}, nil
}

// Respond plays one turn: the narrator answers the action, both sides of the
// exchange are recorded, the scene and session memory are updated and any
// experience the narrator grants is awarded through the progression engine.
func (s *AdventureService) Respond(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	action := strings.TrimSpace(req.PlayerAction)
	if action == "" {
		return nil, invalidf("player action is required")
	}
	if req.DiceRoll != nil {
		if _, ok := model.DiceSides(req.DiceRoll.Type); !ok {
			return nil, invalidf("unknown dice type %q", req.DiceRoll.Type)
		}
	}

	gc, session, err := s.loadTurnContext(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := s.narrator.Respond(ctx, *gc, action, req.DiceRoll)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("Narrator failed")
		return nil, fmt.Errorf("%w: %w", ErrNarratorUnavailable, err)
	}

	playerMsg := &model.Message{
		SessionID:   session.ID,
		Sender:      model.SenderPlayer,
		Content:     action,
		MessageType: model.MessageTypeText,
	}
	if req.DiceRoll != nil {
		playerMsg.MessageType = model.MessageTypeDiceRoll
		playerMsg.Metadata = &model.MessageMetadata{DiceRoll: req.DiceRoll}
	}
	if _, err := s.messages.Create(ctx, playerMsg); err != nil {
		return nil, storageErr("create player message", err)
	}

	dmType := model.MessageTypeText
	if resp.CombatAction {
		dmType = model.MessageTypeCombat
	}
	if _, err := s.messages.Create(ctx, &model.Message{
		SessionID:   session.ID,
		Sender:      model.SenderDM,
		Content:     resp.Content,
		MessageType: dmType,
		Metadata:    resp.Metadata(),
	}); err != nil {
		return nil, storageErr("create dm message", err)
	}

	if resp.SceneUpdate != "" && resp.SceneUpdate != gc.CurrentScene {
		if _, err := s.sessions.UpdateScene(ctx, session.ID, resp.SceneUpdate); err != nil {
			return nil, storageErr("update scene", err)
		}
	}

	for _, mu := range resp.MemoryUpdates {
		if _, err := s.contexts.Upsert(ctx, &model.SessionContext{
			SessionID:    session.ID,
			ContextType:  mu.Type,
			ContextKey:   mu.Key,
			ContextValue: mu.Value,
			Importance:   mu.Importance,
		}); err != nil {
			return nil, storageErr("save session memory", err)
		}
	}

	result := &TurnResult{Response: resp}
	if resp.ExperienceAwarded > 0 {
		award, err := s.progression.AwardExperience(ctx, AwardRequest{
			CharacterID: gc.Character.ID,
			Amount:      resp.ExperienceAwarded,
			Source:      resp.ExperienceSource,
			Description: optional(resp.ExperienceReason),
			SessionID:   &session.ID,
		})
		if err != nil {
			return nil, err
		}
		result.Award = award
	}

	return result, nil
}

// loadTurnContext gathers what the narrator needs for a turn.
func (s *AdventureService) loadTurnContext(ctx context.Context, req TurnRequest) (*narrator.Context, *model.GameSession, error) {
	var (
		character *model.Character
		session   *model.GameSession
		recent    []*model.Message
		memory    []*model.SessionContext
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		character, err = s.characters.Get(gctx, req.CharacterID)
		return storageErr("get character", err)
	})
	g.Go(func() error {
		var err error
		session, err = s.sessions.Get(gctx, req.SessionID)
		return storageErr("get session", err)
	})
	g.Go(func() error {
		var err error
		recent, err = s.messages.ListBySession(gctx, req.SessionID, s.limits.Messages)
		return storageErr("list messages", err)
	})
	g.Go(func() error {
		var err error
		memory, err = s.contexts.ListBySession(gctx, req.SessionID, s.limits.Context)
		return storageErr("list session memory", err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if session.CharacterID != character.ID {
		return nil, nil, invalidf("session %s does not belong to character %s", session.ID, character.ID)
	}

	gc := &narrator.Context{
		Character:      character,
		SessionTitle:   session.Title,
		RecentMessages: recent,
		SessionContext: memory,
	}
	if session.CurrentScene != nil {
		gc.CurrentScene = *session.CurrentScene
	}
	return gc, session, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
