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

// AwardRequest asks for experience to be added to a character.
type AwardRequest struct {
	CharacterID string
	Amount      int
	Source      model.ExperienceSource
	Description *string
	SessionID   *string
}

// AwardResult is the committed outcome of an award.
type AwardResult struct {
	LeveledUp   bool                    `json:"leveledUp"`
	NewLevel    *int                    `json:"newLevel,omitempty"`
	Progression *model.ProgressionEvent `json:"progression"`
	LevelUps    []*model.LevelUpEvent   `json:"levelUps"`
	Character   *model.Character        `json:"character"`
}

// ProgressionSummary describes where a character stands on the experience table.
type ProgressionSummary struct {
	CharacterID           string  `json:"characterId"`
	Level                 int     `json:"level"`
	Experience            int     `json:"experience"`
	ProficiencyBonus      int     `json:"proficiencyBonus"`
	ExperienceToNextLevel int     `json:"experienceToNextLevel"`
	CurrentLevelThreshold int     `json:"currentLevelThreshold"`
	NextLevelThreshold    *int    `json:"nextLevelThreshold,omitempty"`
	ProgressPercent       float64 `json:"progressPercent"`
}

// ProgressionService awards experience and applies level-ups.
type ProgressionService struct {
	tx          store.Transactor
	characters  store.CharacterStore
	sessions    store.SessionStore
	progression store.ProgressionHistory
	levelUps    store.LevelUpHistory
	features    store.FeatureCatalog
	locker      lock.Locker
	lockTimeout time.Duration
	policy      progression.LevelUpPolicy
}

// NewProgressionService creates a new ProgressionService instance.
func NewProgressionService(
	stores *Stores,
	locker lock.Locker,
	lockTimeout time.Duration,
	policy progression.LevelUpPolicy,
) *ProgressionService {
	return &ProgressionService{
		tx:          stores.Tx,
		characters:  stores.Characters,
		sessions:    stores.Sessions,
		progression: stores.Progression,
		levelUps:    stores.LevelUps,
		features:    stores.Features,
		locker:      locker,
		lockTimeout: lockTimeout,
		policy:      policy,
	}
}

// AwardExperience adds experience to a character and applies any level-ups.
// The award, its level-up records and the character update commit together or
// not at all. Awards for the same character are serialized.
func (s *ProgressionService) AwardExperience(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	if req.Amount <= 0 {
		return nil, invalidf("experience amount must be positive, got %d", req.Amount)
	}
	if req.Amount > progression.MaxExperience {
		return nil, invalidf("experience amount %d exceeds %d", req.Amount, progression.MaxExperience)
	}
	if !req.Source.Valid() {
		return nil, invalidf("unknown experience source %q", req.Source)
	}
	if strings.TrimSpace(req.CharacterID) == "" {
		return nil, invalidf("character id is required")
	}
	if err := s.checkSession(ctx, req); err != nil {
		return nil, err
	}

	var result *AwardResult
	err := s.locker.WithLockContext(ctx, req.CharacterID, s.lockTimeout, func() error {
		return s.tx.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
			res, err := s.award(ctx, tx, req)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
	})
	if err != nil {
		log.Warn().Err(err).
			Str("character_id", req.CharacterID).
			Int("amount", req.Amount).
			Str("source", string(req.Source)).
			Msg("Experience award failed")
		return nil, storageErr("award experience", err)
	}

	evt := log.Debug()
	if result.LeveledUp {
		evt = log.Info().Int("new_level", result.Character.Level)
	}
	evt.Str("character_id", req.CharacterID).
		Int("amount", req.Amount).
		Str("source", string(req.Source)).
		Int("experience", result.Character.Experience).
		Msg("Experience awarded")

	return result, nil
}

func (s *ProgressionService) award(ctx context.Context, tx store.Tx, req AwardRequest) (*AwardResult, error) {
	character, err := tx.Characters().GetForUpdate(ctx, req.CharacterID)
	if err != nil {
		return nil, storageErr("load character", err)
	}
	if !progression.CanAward(character.Experience, req.Amount) {
		return nil, invalidf("experience %d + %d exceeds %d", character.Experience, req.Amount, progression.MaxExperience)
	}

	event, err := tx.Progression().Append(ctx, &model.ProgressionEvent{
		CharacterID:      character.ID,
		ExperienceGained: req.Amount,
		Source:           req.Source,
		Description:      req.Description,
		SessionID:        req.SessionID,
	})
	if err != nil {
		return nil, storageErr("record experience", err)
	}

	adv := progression.Advance(progression.State{
		Class:        character.Class,
		Constitution: character.Constitution,
		Experience:   character.Experience,
		Health:       character.Health,
		MaxHealth:    character.MaxHealth,
	}, req.Amount, s.policy)

	levelUps := make([]*model.LevelUpEvent, 0, len(adv.Steps))
	for _, step := range adv.Steps {
		names, err := s.featureNames(ctx, character.Class, step.NewLevel)
		if err != nil {
			return nil, err
		}
		lu, err := tx.LevelUps().Append(ctx, &model.LevelUpEvent{
			CharacterID:     character.ID,
			PreviousLevel:   step.PreviousLevel,
			NewLevel:        step.NewLevel,
			HitPointsGained: step.HitPoints,
			FeaturesGained:  names,
			SessionID:       req.SessionID,
		})
		if err != nil {
			return nil, storageErr("record level up", err)
		}
		levelUps = append(levelUps, lu)
	}

	updated, err := tx.Characters().Update(ctx, character.ID, model.CharacterUpdate{
		Experience:       &adv.NewExperience,
		Level:            &adv.NewLevel,
		ProficiencyBonus: &adv.ProficiencyBonus,
		Health:           &adv.Health,
		MaxHealth:        &adv.MaxHealth,
	})
	if err != nil {
		return nil, storageErr("update character", err)
	}

	result := &AwardResult{
		LeveledUp:   adv.LeveledUp(),
		Progression: event,
		LevelUps:    levelUps,
		Character:   updated,
	}
	if result.LeveledUp {
		result.NewLevel = &adv.NewLevel
	}
	return result, nil
}

// checkSession rejects a session reference that does not exist or belongs to
// another character.
func (s *ProgressionService) checkSession(ctx context.Context, req AwardRequest) error {
	if req.SessionID == nil {
		return nil
	}
	if strings.TrimSpace(*req.SessionID) == "" {
		return invalidf("session id cannot be empty")
	}
	session, err := s.sessions.Get(ctx, *req.SessionID)
	if err != nil {
		return storageErr("get session", err)
	}
	if session.CharacterID != req.CharacterID {
		return invalidf("session %s does not belong to character %s", session.ID, req.CharacterID)
	}
	return nil
}

func (s *ProgressionService) featureNames(ctx context.Context, class string, level int) ([]string, error) {
	features, err := s.features.FeaturesFor(ctx, class, level)
	if err != nil {
		return nil, storageErr("load class features", err)
	}
	names := make([]string, 0, len(features))
	for _, f := range features {
		names = append(names, f.FeatureName)
	}
	return names, nil
}

// ListProgression returns a character's experience awards, newest first.
func (s *ProgressionService) ListProgression(ctx context.Context, characterID string, limit int) ([]*model.ProgressionEvent, error) {
	if _, err := s.characters.Get(ctx, characterID); err != nil {
		return nil, storageErr("get character", err)
	}
	events, err := s.progression.ListByCharacter(ctx, characterID, limit)
	if err != nil {
		return nil, storageErr("list progression", err)
	}
	return events, nil
}

// ListLevelUps returns a character's level-ups, newest first.
func (s *ProgressionService) ListLevelUps(ctx context.Context, characterID string, limit int) ([]*model.LevelUpEvent, error) {
	if _, err := s.characters.Get(ctx, characterID); err != nil {
		return nil, storageErr("get character", err)
	}
	events, err := s.levelUps.ListByCharacter(ctx, characterID, limit)
	if err != nil {
		return nil, storageErr("list level ups", err)
	}
	return events, nil
}

// Summary reports a character's position on the experience table.
func (s *ProgressionService) Summary(ctx context.Context, characterID string) (*ProgressionSummary, error) {
	c, err := s.characters.Get(ctx, characterID)
	if err != nil {
		return nil, storageErr("get character", err)
	}

	level := progression.LevelFromExperience(c.Experience)
	summary := &ProgressionSummary{
		CharacterID:           c.ID,
		Level:                 level,
		Experience:            c.Experience,
		ProficiencyBonus:      progression.ProficiencyBonusFromLevel(level),
		ExperienceToNextLevel: progression.ExperienceToNextLevel(c.Experience),
		CurrentLevelThreshold: progression.ThresholdForLevel(level),
		ProgressPercent:       progression.LevelProgressPercent(c.Experience),
	}
	if level < progression.MaxLevel {
		next := progression.ThresholdForLevel(level + 1)
		summary.NextLevelThreshold = &next
	}
	return summary, nil
}

// ClassFeatures lists every feature of a class ordered by level.
// An unrecognized class has no features and is reported as ErrNotFound.
func (s *ProgressionService) ClassFeatures(ctx context.Context, class string) ([]*model.ClassFeature, error) {
	features, err := s.features.ListByClass(ctx, class)
	if err != nil {
		return nil, storageErr("list class features", err)
	}
	if len(features) == 0 {
		return nil, storageErr("list class features", store.ErrNotFound)
	}
	return features, nil
}

// SeedFeatures loads the built-in class feature catalog. It is idempotent.
func (s *ProgressionService) SeedFeatures(ctx context.Context) (int, error) {
	n, err := s.features.Seed(ctx, model.DefaultClassFeatures())
	if err != nil {
		return 0, storageErr("seed class features", err)
	}
	log.Info().Int("inserted", n).Msg("Class features seeded")
	return n, nil
}
