package operation

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/encounters"
	"github.com/grimoire-rpg/encounter-api/internal/rules"
)

const (
	// Burst radius of a fireball around its target point, in feet
	fireballBlastRadius = 20.0
	// Difficulty class a dexterity save must meet to halve the damage
	fireballSaveDC = 8
)

// submitCast validates a spell cast and seeds the caster's damage roll.
// The rolled total becomes the damage pool later split across saves.
func (o *orchestrator) submitCast(ctx context.Context, caster *dnd5e.Character, cast *dnd5e.Cast) (dnd5e.Action, []dnd5e.Interaction, []dnd5e.Violation, error) {
	if cast == nil {
		return dnd5e.Action{}, nil, nil, errors.InvalidArgument("cast payload is required")
	}

	spell, ok := dnd5e.FetchSpellByName(cast.Spell)
	if !ok {
		return dnd5e.Action{}, nil, nil, errors.NotFoundf("spell %q does not exist", cast.Spell)
	}

	if cast.Target.Type != spell.Target {
		return dnd5e.Action{}, nil, nil, errors.InvalidArgumentf("spell %s requires a %s target, got %s", spell.Name, spell.Target, cast.Target.Type)
	}
	if cast.Target.Position == nil {
		return dnd5e.Action{}, nil, nil, errors.InvalidArgumentf("spell %s requires a target position", spell.Name)
	}
	if caster.Position == nil {
		return dnd5e.Action{}, nil, nil, errors.FailedPreconditionf("character %s does not have a position", caster.ID)
	}

	violations := rules.CheckSpellRange(caster.ID, *caster.Position, *cast.Target.Position, spell)

	interactions := []dnd5e.Interaction{{
		ID:          o.interactionID.Generate(),
		CharacterID: caster.ID,
		RollType:    dnd5e.RollTypeDamage,
	}}

	action := dnd5e.CastSpellAction(dnd5e.Cast{
		Spell:  spell.Name,
		Target: cast.Target,
	})

	return action, interactions, violations, nil
}

// resolveCastInteraction progresses a spell cast. The caster's damage
// roll fixes the pool and fans out dexterity saves to everyone caught
// in the blast, the caster included when in radius. Each save then
// applies half the pool on success, the full pool on failure.
func (o *orchestrator) resolveCastInteraction(ctx context.Context, campaignID string, operation *dnd5e.Operation, cast *dnd5e.Cast, interaction *dnd5e.Interaction, result int) ([]dnd5e.Interaction, error) {
	if cast.Target.Position == nil {
		return nil, nil
	}

	switch interaction.RollType {
	case dnd5e.RollTypeDamage:
		return o.fanOutSaves(ctx, campaignID, operation, *cast.Target.Position)

	case dnd5e.SaveRoll(dnd5e.AbilityDexterity):
		pool, ok := damagePool(operation)
		if !ok {
			return nil, errors.FailedPreconditionf("operation %s has no resolved damage roll", operation.ID)
		}

		damage := pool
		if result >= fireballSaveDC {
			damage = pool / 2
		}

		if err := o.applyDamage(ctx, campaignID, interaction.CharacterID, damage); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		return nil, nil
	}
}

// fanOutSaves seeds one dexterity save per encounter member standing
// within the blast radius of the target point.
func (o *orchestrator) fanOutSaves(ctx context.Context, campaignID string, operation *dnd5e.Operation, target dnd5e.Position) ([]dnd5e.Interaction, error) {
	fetched, err := o.encounterRepo.Get(ctx, encounters.GetInput{
		CampaignID:  campaignID,
		EncounterID: operation.EncounterID,
	})
	if err != nil {
		return nil, err
	}

	var saves []dnd5e.Interaction
	for _, characterID := range fetched.Encounter.CharacterIDs {
		member, err := o.characterRepo.Get(ctx, characters.GetInput{
			CampaignID:  campaignID,
			CharacterID: characterID,
		})
		if err != nil {
			return nil, err
		}
		if member.Character.Position == nil {
			continue
		}
		if member.Character.Position.Distance(target) > fireballBlastRadius {
			continue
		}

		saves = append(saves, dnd5e.Interaction{
			ID:          o.interactionID.Generate(),
			CharacterID: characterID,
			RollType:    dnd5e.SaveRoll(dnd5e.AbilityDexterity),
		})
	}

	return saves, nil
}

// damagePool reads the spell's rolled damage pool from the operation's
// already-resolved damage interaction.
func damagePool(operation *dnd5e.Operation) (int, bool) {
	for i := range operation.Interactions {
		interaction := &operation.Interactions[i]
		if interaction.RollType == dnd5e.RollTypeDamage && interaction.Result != nil {
			return *interaction.Result, true
		}
	}
	return 0, false
}

// resolveInteraction dispatches a just-resolved interaction to the
// matching action resolver. Unmatched combinations resolve to nothing.
func (o *orchestrator) resolveInteraction(ctx context.Context, campaignID string, operation *dnd5e.Operation, interaction *dnd5e.Interaction, result int) ([]dnd5e.Interaction, error) {
	action := operation.Type.AsAction()
	if action == nil {
		return nil, nil
	}

	switch action.Type {
	case dnd5e.ActionKindAttack:
		if action.Attack == nil {
			return nil, nil
		}
		return o.resolveAttackInteraction(ctx, campaignID, operation, action.Attack, interaction, result)
	case dnd5e.ActionKindCastSpell:
		if action.CastSpell == nil {
			return nil, nil
		}
		return o.resolveCastInteraction(ctx, campaignID, operation, action.CastSpell, interaction, result)
	default:
		return nil, nil
	}
}
