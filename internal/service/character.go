package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dungeon-master/internal/model"
	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/progression"
	"dungeon-master/internal/store"
)

const (
	defaultAbilityScore = 10
	minAbilityScore     = 1
	maxAbilityScore     = 30
)

// CreateCharacterRequest holds the fields a player chooses for a new character.
// Zero ability scores default to 10.
type CreateCharacterRequest struct {
	Name         string `json:"name"`
	Class        string `json:"class"`
	MaxHealth    int    `json:"maxHealth"`
	Strength     int    `json:"strength"`
	Dexterity    int    `json:"dexterity"`
	Constitution int    `json:"constitution"`
	Intelligence int    `json:"intelligence"`
	Wisdom       int    `json:"wisdom"`
	Charisma     int    `json:"charisma"`
}

// CharacterEdit is a direct edit. Experience, level, proficiency bonus and max
// health belong to the progression engine and cannot be edited.
type CharacterEdit struct {
	Name         *string `json:"name,omitempty"`
	Class        *string `json:"class,omitempty"`
	Health       *int    `json:"health,omitempty"`
	Strength     *int    `json:"strength,omitempty"`
	Dexterity    *int    `json:"dexterity,omitempty"`
	Constitution *int    `json:"constitution,omitempty"`
	Intelligence *int    `json:"intelligence,omitempty"`
	Wisdom       *int    `json:"wisdom,omitempty"`
	Charisma     *int    `json:"charisma,omitempty"`
}

// CharacterService manages characters outside of experience awards.
type CharacterService struct {
	tx               store.Transactor
	characters       store.CharacterStore
	sessions         store.SessionStore
	locker           lock.Locker
	lockTimeout      time.Duration
	defaultMaxHealth int
}

// NewCharacterService creates a new CharacterService instance.
func NewCharacterService(stores *Stores, locker lock.Locker, lockTimeout time.Duration, defaultMaxHealth int) *CharacterService {
	return &CharacterService{
		tx:               stores.Tx,
		characters:       stores.Characters,
		sessions:         stores.Sessions,
		locker:           locker,
		lockTimeout:      lockTimeout,
		defaultMaxHealth: defaultMaxHealth,
	}
}

// Create creates a level 1 character with no experience at full health.
func (s *CharacterService) Create(ctx context.Context, req CreateCharacterRequest) (*model.Character, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("character name is required")
	}
	class, ok := model.CanonicalClass(req.Class)
	if !ok {
		return nil, invalidf("unknown class %q", req.Class)
	}

	maxHealth := req.MaxHealth
	if maxHealth == 0 {
		maxHealth = s.defaultMaxHealth
	}
	if maxHealth < 1 {
		return nil, invalidf("max health must be positive, got %d", maxHealth)
	}

	c := &model.Character{
		Name:             name,
		Class:            class,
		Level:            progression.MinLevel,
		Health:           maxHealth,
		MaxHealth:        maxHealth,
		Strength:         orDefaultScore(req.Strength),
		Dexterity:        orDefaultScore(req.Dexterity),
		Constitution:     orDefaultScore(req.Constitution),
		Intelligence:     orDefaultScore(req.Intelligence),
		Wisdom:           orDefaultScore(req.Wisdom),
		Charisma:         orDefaultScore(req.Charisma),
		Experience:       0,
		ProficiencyBonus: progression.ProficiencyBonusFromLevel(progression.MinLevel),
	}
	for _, score := range []int{c.Strength, c.Dexterity, c.Constitution, c.Intelligence, c.Wisdom, c.Charisma} {
		if err := checkScore(score); err != nil {
			return nil, err
		}
	}

	created, err := s.characters.Create(ctx, c)
	if err != nil {
		return nil, storageErr("create character", err)
	}

	log.Info().Str("character_id", created.ID).Str("class", created.Class).Msg("Character created")
	return created, nil
}

// Get retrieves a character by id.
func (s *CharacterService) Get(ctx context.Context, id string) (*model.Character, error) {
	c, err := s.characters.Get(ctx, id)
	if err != nil {
		return nil, storageErr("get character", err)
	}
	return c, nil
}

// Update applies a direct edit. It takes the same character lock as experience
// awards so the health check sees the current max health.
func (s *CharacterService) Update(ctx context.Context, id string, edit CharacterEdit) (*model.Character, error) {
	upd, err := edit.toUpdate()
	if err != nil {
		return nil, err
	}

	var updated *model.Character
	err = s.locker.WithLockContext(ctx, id, s.lockTimeout, func() error {
		return s.tx.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
			current, err := tx.Characters().GetForUpdate(ctx, id)
			if err != nil {
				return storageErr("load character", err)
			}
			if upd.Health != nil && *upd.Health > current.MaxHealth {
				return invalidf("health %d exceeds max health %d", *upd.Health, current.MaxHealth)
			}
			updated, err = tx.Characters().Update(ctx, id, upd)
			if err != nil {
				return storageErr("update character", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, storageErr("update character", err)
	}
	return updated, nil
}

// ActiveSession returns the most recently updated active session of a character.
func (s *CharacterService) ActiveSession(ctx context.Context, characterID string) (*model.GameSession, error) {
	if _, err := s.characters.Get(ctx, characterID); err != nil {
		return nil, storageErr("get character", err)
	}
	session, err := s.sessions.GetActiveForCharacter(ctx, characterID)
	if err != nil {
		return nil, storageErr("get active session", err)
	}
	return session, nil
}

func (e CharacterEdit) toUpdate() (model.CharacterUpdate, error) {
	upd := model.CharacterUpdate{
		Health:       e.Health,
		Strength:     e.Strength,
		Dexterity:    e.Dexterity,
		Constitution: e.Constitution,
		Intelligence: e.Intelligence,
		Wisdom:       e.Wisdom,
		Charisma:     e.Charisma,
	}

	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name == "" {
			return upd, invalidf("character name cannot be empty")
		}
		upd.Name = &name
	}
	if e.Class != nil {
		class, ok := model.CanonicalClass(*e.Class)
		if !ok {
			return upd, invalidf("unknown class %q", *e.Class)
		}
		upd.Class = &class
	}
	if e.Health != nil && *e.Health < 0 {
		return upd, invalidf("health cannot be negative, got %d", *e.Health)
	}
	for _, score := range []*int{e.Strength, e.Dexterity, e.Constitution, e.Intelligence, e.Wisdom, e.Charisma} {
		if score == nil {
			continue
		}
		if err := checkScore(*score); err != nil {
			return upd, err
		}
	}
	return upd, nil
}

func orDefaultScore(v int) int {
	if v == 0 {
		return defaultAbilityScore
	}
	return v
}

func checkScore(v int) error {
	if v < minAbilityScore || v > maxAbilityScore {
		return invalidf("ability score %d outside %d..%d", v, minAbilityScore, maxAbilityScore)
	}
	return nil
}
