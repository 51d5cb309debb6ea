package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"dungeon-master/internal/dice"
	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// RollRequest asks for one die to be rolled for a character in a session.
type RollRequest struct {
	SessionID   string  `json:"sessionId"`
	CharacterID string  `json:"characterId"`
	DiceType    string  `json:"diceType"`
	Modifier    int     `json:"modifier"`
	Purpose     *string `json:"purpose,omitempty"`
}

// RollResult is a stored roll with its total.
type RollResult struct {
	*model.DiceRoll
	Total int `json:"total"`
}

// DiceService rolls and records dice.
type DiceService struct {
	characters   store.CharacterStore
	sessions     store.SessionStore
	rolls        store.DiceRollStore
	roller       dice.Roller
	historyLimit int
}

// NewDiceService creates a new DiceService instance.
func NewDiceService(stores *Stores, roller dice.Roller, historyLimit int) *DiceService {
	return &DiceService{
		characters:   stores.Characters,
		sessions:     stores.Sessions,
		rolls:        stores.DiceRolls,
		roller:       roller,
		historyLimit: historyLimit,
	}
}

// Roll draws one die and stores the result.
func (s *DiceService) Roll(ctx context.Context, req RollRequest) (*RollResult, error) {
	if req.SessionID == "" || req.CharacterID == "" {
		return nil, invalidf("session id and character id are required")
	}
	result, err := dice.Roll(s.roller, req.DiceType)
	if err != nil {
		if errors.Is(err, dice.ErrUnknownDice) {
			return nil, invalidf("%v", err)
		}
		return nil, err
	}
	if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
		return nil, storageErr("get session", err)
	}
	if _, err := s.characters.Get(ctx, req.CharacterID); err != nil {
		return nil, storageErr("get character", err)
	}

	roll, err := s.rolls.Create(ctx, &model.DiceRoll{
		SessionID:   req.SessionID,
		CharacterID: req.CharacterID,
		DiceType:    req.DiceType,
		Result:      result,
		Modifier:    req.Modifier,
		Purpose:     req.Purpose,
	})
	if err != nil {
		return nil, storageErr("create dice roll", err)
	}

	log.Debug().
		Str("session_id", req.SessionID).
		Str("dice", req.DiceType).
		Int("result", result).
		Int("modifier", req.Modifier).
		Msg("Dice rolled")

	return &RollResult{DiceRoll: roll, Total: roll.Total()}, nil
}

// Recent returns the latest rolls of a session, newest first.
func (s *DiceService) Recent(ctx context.Context, sessionID string, limit int) ([]*model.DiceRoll, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, storageErr("get session", err)
	}
	rolls, err := s.rolls.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, storageErr("list dice rolls", err)
	}
	return rolls, nil
}
