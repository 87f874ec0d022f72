package dnd5e

import "time"

// Operation is the persisted record of one player-submitted move,
// action, bonus action, or roll. Operations are immutable once written,
// with two exceptions enforced by the ledger: new interactions may be
// appended, and a pending interaction may receive its result. Both go
// through compare-and-swap on ModifiedAt. EncounterState is a snapshot
// of the encounter's state at submission time, not a live reference.
type Operation struct {
	ID             string          `json:"id"`
	CampaignID     string          `json:"campaign_id"`
	EncounterID    string          `json:"encounter_id,omitempty"`
	EncounterState *EncounterState `json:"encounter_state,omitempty"`
	CharacterID    string          `json:"character_id"`
	CreatedAt      time.Time       `json:"created_at"`
	ModifiedAt     time.Time       `json:"modified_at"`
	Type           OperationType   `json:"operation_type"`
	Interactions   []Interaction   `json:"interactions"`
	Legality       Legality        `json:"legality"`
}

// FindInteraction returns the index and interaction with the given id,
// or -1 and nil when absent.
func (o *Operation) FindInteraction(interactionID string) (int, *Interaction) {
	for i := range o.Interactions {
		if o.Interactions[i].ID == interactionID {
			return i, &o.Interactions[i]
		}
	}
	return -1, nil
}

// OperationKind tags the operation payload variant
type OperationKind string

// Operation kinds
const (
	OperationKindMove   OperationKind = "MOVE"
	OperationKindAction OperationKind = "ACTION"
	OperationKindBonus  OperationKind = "BONUS"
	OperationKindRoll   OperationKind = "ROLL"
)

// OperationType is a closed variant: exactly one payload matches Type
type OperationType struct {
	Type   OperationKind `json:"type"`
	Move   *Move         `json:"move,omitempty"`
	Action *Action       `json:"action,omitempty"`
	Bonus  *Bonus        `json:"bonus,omitempty"`
	Roll   *Roll         `json:"roll,omitempty"`
}

// MoveOperation wraps a move payload
func MoveOperation(move Move) OperationType {
	return OperationType{Type: OperationKindMove, Move: &move}
}

// ActionOperation wraps an action payload
func ActionOperation(action Action) OperationType {
	return OperationType{Type: OperationKindAction, Action: &action}
}

// RollOperation wraps a roll payload
func RollOperation(rollType RollType, result int) OperationType {
	return OperationType{Type: OperationKindRoll, Roll: &Roll{Roll: rollType, Result: result}}
}

// AsRoll returns the roll payload when the operation is a roll
func (t OperationType) AsRoll() (RollType, int, bool) {
	if t.Type != OperationKindRoll || t.Roll == nil {
		return "", 0, false
	}
	return t.Roll.Roll, t.Roll.Result, true
}

// AsMove returns the move payload, or nil for non-moves
func (t OperationType) AsMove() *Move {
	if t.Type != OperationKindMove {
		return nil
	}
	return t.Move
}

// AsAction returns the action payload, or nil for non-actions
func (t OperationType) AsAction() *Action {
	if t.Type != OperationKindAction {
		return nil
	}
	return t.Action
}

// Move records a position change and the distance it covered
type Move struct {
	ToPosition Position `json:"to_position"`
	Feet       float64  `json:"feet"`
}

// Bonus records a bonus action by name
type Bonus struct {
	Name string `json:"name"`
}

// Roll records a completed die roll
type Roll struct {
	Roll   RollType `json:"roll"`
	Result int      `json:"result"`
}

// ActionKind tags the action payload variant
type ActionKind string

// Action kinds. Only attack and cast-spell carry payloads and resolve
// through interactions; the rest are declarations.
const (
	ActionKindAttack    ActionKind = "ATTACK"
	ActionKindCastSpell ActionKind = "CAST-SPELL"
	ActionKindDash      ActionKind = "DASH"
	ActionKindDisengage ActionKind = "DISENGAGE"
	ActionKindDodge     ActionKind = "DODGE"
	ActionKindHelp      ActionKind = "HELP"
	ActionKindHide      ActionKind = "HIDE"
	ActionKindReady     ActionKind = "READY"
	ActionKindSearch    ActionKind = "SEARCH"
	ActionKindUseObject ActionKind = "USE-OBJECT"
)

// Action is a closed variant over the action kinds
type Action struct {
	Type      ActionKind `json:"action_type"`
	Attack    *Attack    `json:"attack,omitempty"`
	CastSpell *Cast      `json:"cast_spell,omitempty"`
}

// AttackAction wraps an attack payload
func AttackAction(attack Attack) Action {
	return Action{Type: ActionKindAttack, Attack: &attack}
}

// CastSpellAction wraps a spell cast payload
func CastSpellAction(cast Cast) Action {
	return Action{Type: ActionKindCastSpell, CastSpell: &cast}
}

// Attack is an attack action against one or more targets
type Attack struct {
	Method  AttackMethod `json:"method"`
	Targets []string     `json:"targets"`
}

// AttackMethodKind tags the attack method variant
type AttackMethodKind string

// Attack methods
const (
	AttackMethodUnarmed          AttackMethodKind = "UNARMED"
	AttackMethodWeapon           AttackMethodKind = "WEAPON"
	AttackMethodImprovisedWeapon AttackMethodKind = "IMPROVISED-WEAPON"
)

// AttackMethod is a closed variant: DamageType is set for unarmed
// strikes, Weapon for weapon and improvised-weapon attacks. A weapon
// attack may name an item id instead of an inline weapon; the ledger
// resolves it against the item catalog at submission.
type AttackMethod struct {
	Type       AttackMethodKind `json:"type"`
	DamageType DamageType       `json:"damage_type,omitempty"`
	Weapon     *Weapon          `json:"weapon,omitempty"`
	ItemID     string           `json:"item_id,omitempty"`
}

// UnarmedAttackMethod builds an unarmed strike
func UnarmedAttackMethod(damageType DamageType) AttackMethod {
	return AttackMethod{Type: AttackMethodUnarmed, DamageType: damageType}
}

// WeaponAttackMethod builds a weapon attack
func WeaponAttackMethod(weapon Weapon) AttackMethod {
	return AttackMethod{Type: AttackMethodWeapon, Weapon: &weapon}
}

// ImprovisedWeaponAttackMethod builds an improvised weapon attack
func ImprovisedWeaponAttackMethod(weapon Weapon) AttackMethod {
	return AttackMethod{Type: AttackMethodImprovisedWeapon, Weapon: &weapon}
}

// NormalRange returns the method's normal attack range in feet
func (m AttackMethod) NormalRange() float64 {
	switch m.Type {
	case AttackMethodWeapon, AttackMethodImprovisedWeapon:
		if m.Weapon != nil {
			return m.Weapon.NormalRange()
		}
	}
	return 5.0
}

// Cast is a spell-cast action
type Cast struct {
	Spell  string      `json:"spell"`
	Target SpellTarget `json:"target"`
}

// SpellTargetKind tags the spell target variant
type SpellTargetKind string

// Spell target kinds
const (
	SpellTargetCreature SpellTargetKind = "CREATURE"
	SpellTargetPosition SpellTargetKind = "POSITION"
	SpellTargetNone     SpellTargetKind = "NONE"
)

// SpellTarget is a closed variant over what a spell is aimed at
type SpellTarget struct {
	Type        SpellTargetKind `json:"type"`
	CharacterID string          `json:"character_id,omitempty"`
	Position    *Position       `json:"position,omitempty"`
}

// PositionSpellTarget targets a point in space
func PositionSpellTarget(position Position) SpellTarget {
	return SpellTarget{Type: SpellTargetPosition, Position: &position}
}

// CreatureSpellTarget targets a single character
func CreatureSpellTarget(characterID string) SpellTarget {
	return SpellTarget{Type: SpellTargetCreature, CharacterID: characterID}
}

// Interaction is a single pending or resolved dice roll required to
// progress an operation. Result is write-once; the ledger rejects a
// second submission.
type Interaction struct {
	ID          string   `json:"id"`
	CharacterID string   `json:"character_id"`
	RollType    RollType `json:"roll_type"`
	Result      *int     `json:"result,omitempty"`
}

// LegalityKind tags the legality variant
type LegalityKind string

// Legality states
const (
	LegalityLegal           LegalityKind = "LEGAL"
	LegalityIllegalPending  LegalityKind = "ILLEGAL-PENDING"
	LegalityIllegalApproved LegalityKind = "ILLEGAL-APPROVED"
)

// Legality records whether an operation passed validation cleanly, is
// awaiting referee review, or was approved despite violations.
type Legality struct {
	Type       LegalityKind `json:"type"`
	Violations []Violation  `json:"violations,omitempty"`
}

// Legal marks an operation with no violations
func Legal() Legality {
	return Legality{Type: LegalityLegal}
}

// IllegalPending marks an operation awaiting referee review
func IllegalPending(violations []Violation) Legality {
	return Legality{Type: LegalityIllegalPending, Violations: violations}
}

// IllegalApproved marks an overridden operation, keeping its violations
func IllegalApproved(violations []Violation) Legality {
	return Legality{Type: LegalityIllegalApproved, Violations: violations}
}

// IsPending reports whether the operation awaits referee review
func (l Legality) IsPending() bool {
	return l.Type == LegalityIllegalPending
}
