package dnd5e

import "time"

// Encounter is a single combat session within a campaign. While the
// state is Initiative, CharacterIDs holds the roster; the moment the
// state becomes Turn it is overwritten with the turn order. ModifiedAt
// doubles as the optimistic-lock token for all updates.
type Encounter struct {
	ID           string         `json:"id"`
	CampaignID   string         `json:"campaign_id"`
	CreatedAt    time.Time      `json:"created_at"`
	ModifiedAt   time.Time      `json:"modified_at"`
	CharacterIDs []string       `json:"character_ids"`
	State        EncounterState `json:"state"`
}

// HasCharacter reports whether the character is part of the encounter
func (e *Encounter) HasCharacter(characterID string) bool {
	for _, id := range e.CharacterIDs {
		if id == characterID {
			return true
		}
	}
	return false
}

// EncounterStateKind tags the encounter state variant
type EncounterStateKind string

// Encounter states
const (
	EncounterStateInitiative EncounterStateKind = "INITIATIVE"
	EncounterStateTurn       EncounterStateKind = "TURN"
	EncounterStateFinished   EncounterStateKind = "FINISHED"
)

// EncounterState is a closed variant: Round and CharacterID are only
// meaningful while Type is TURN.
type EncounterState struct {
	Type        EncounterStateKind `json:"type"`
	Round       int                `json:"round,omitempty"`
	CharacterID string             `json:"character_id,omitempty"`
}

// InitiativeState is the initial encounter state
func InitiativeState() EncounterState {
	return EncounterState{Type: EncounterStateInitiative}
}

// TurnState marks a specific character's turn within a round
func TurnState(round int, characterID string) EncounterState {
	return EncounterState{Type: EncounterStateTurn, Round: round, CharacterID: characterID}
}

// FinishedState is the terminal encounter state
func FinishedState() EncounterState {
	return EncounterState{Type: EncounterStateFinished}
}

// IsFinished reports whether the state is terminal
func (s EncounterState) IsFinished() bool {
	return s.Type == EncounterStateFinished
}

// AsTurn returns the turn payload when the state is TURN
func (s EncounterState) AsTurn() (round int, characterID string, ok bool) {
	if s.Type != EncounterStateTurn {
		return 0, "", false
	}
	return s.Round, s.CharacterID, true
}
