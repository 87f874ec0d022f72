package operation

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/items"
	"github.com/grimoire-rpg/encounter-api/internal/rules"
)

// submitAttack validates an attack against a single target and seeds
// the attacker's hit roll.
func (o *orchestrator) submitAttack(ctx context.Context, campaignID string, encounter *dnd5e.Encounter, attacker *dnd5e.Character, attack *dnd5e.Attack) (dnd5e.Action, []dnd5e.Interaction, []dnd5e.Violation, error) {
	if attack == nil {
		return dnd5e.Action{}, nil, nil, errors.InvalidArgument("attack payload is required")
	}
	if len(attack.Targets) != 1 {
		return dnd5e.Action{}, nil, nil, errors.InvalidArgument("attack requires exactly one target")
	}
	targetID := attack.Targets[0]

	method, err := o.resolveAttackMethod(ctx, attack.Method)
	if err != nil {
		return dnd5e.Action{}, nil, nil, err
	}

	fetched, err := o.characterRepo.Get(ctx, characters.GetInput{
		CampaignID:  campaignID,
		CharacterID: targetID,
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return dnd5e.Action{}, nil, nil, errors.FailedPreconditionf("target character %s is not in campaign %s", targetID, campaignID)
		}
		return dnd5e.Action{}, nil, nil, err
	}
	target := fetched.Character

	if !encounter.HasCharacter(target.ID) {
		return dnd5e.Action{}, nil, nil, errors.FailedPreconditionf("target character %s is not in encounter %s", target.ID, encounter.ID)
	}
	if attacker.Position == nil {
		return dnd5e.Action{}, nil, nil, errors.FailedPreconditionf("character %s does not have a position", attacker.ID)
	}
	if target.Position == nil {
		return dnd5e.Action{}, nil, nil, errors.FailedPreconditionf("character %s does not have a position", target.ID)
	}

	violations := rules.CheckAttackRange(attacker.ID, target.ID, *attacker.Position, *target.Position, method)

	interactions := []dnd5e.Interaction{{
		ID:          o.interactionID.Generate(),
		CharacterID: attacker.ID,
		RollType:    dnd5e.RollTypeHit,
	}}

	action := dnd5e.AttackAction(dnd5e.Attack{
		Method:  method,
		Targets: []string{target.ID},
	})

	return action, interactions, violations, nil
}

// resolveAttackMethod fills in a weapon named by item id from the catalog
func (o *orchestrator) resolveAttackMethod(ctx context.Context, method dnd5e.AttackMethod) (dnd5e.AttackMethod, error) {
	switch method.Type {
	case dnd5e.AttackMethodUnarmed:
		if method.DamageType == "" {
			return method, errors.InvalidArgument("unarmed attack requires a damage type")
		}
		return method, nil
	case dnd5e.AttackMethodWeapon, dnd5e.AttackMethodImprovisedWeapon:
		if method.Weapon != nil {
			return method, nil
		}
		if method.ItemID == "" {
			return method, errors.InvalidArgument("weapon attack requires a weapon or an item id")
		}

		fetched, err := o.itemRepo.Get(ctx, items.GetInput{ID: method.ItemID})
		if err != nil {
			return method, err
		}
		weapon := fetched.Item.Type.AsWeapon()
		if weapon == nil {
			return method, errors.InvalidArgumentf("item %s is not a weapon", method.ItemID)
		}
		method.Weapon = weapon
		return method, nil
	default:
		return method, errors.InvalidArgumentf("unknown attack method %q", method.Type)
	}
}

// resolveAttackInteraction progresses an attack after one of its rolls
// lands. A hit roll meeting the target's armor class seeds the damage
// roll; a damage roll subtracts hit points, floored at zero.
func (o *orchestrator) resolveAttackInteraction(ctx context.Context, campaignID string, operation *dnd5e.Operation, attack *dnd5e.Attack, interaction *dnd5e.Interaction, result int) ([]dnd5e.Interaction, error) {
	targetID := attack.Targets[0]

	switch interaction.RollType {
	case dnd5e.RollTypeHit:
		fetched, err := o.characterRepo.Get(ctx, characters.GetInput{
			CampaignID:  campaignID,
			CharacterID: targetID,
		})
		if err != nil {
			return nil, err
		}

		if result < fetched.Character.Stats.ArmorClass {
			return nil, nil
		}

		return []dnd5e.Interaction{{
			ID:          o.interactionID.Generate(),
			CharacterID: interaction.CharacterID,
			RollType:    dnd5e.RollTypeDamage,
		}}, nil

	case dnd5e.RollTypeDamage:
		if err := o.applyDamage(ctx, campaignID, targetID, result); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		return nil, nil
	}
}

// applyDamage subtracts damage from a character's hit points, floored
// at zero, through the CAS-guarded update.
func (o *orchestrator) applyDamage(ctx context.Context, campaignID, characterID string, damage int) error {
	fetched, err := o.characterRepo.Get(ctx, characters.GetInput{
		CampaignID:  campaignID,
		CharacterID: characterID,
	})
	if err != nil {
		return err
	}

	remaining := fetched.Character.CurrentHitPoints - damage
	if remaining < 0 {
		remaining = 0
	}

	_, err = o.characterRepo.UpdateHitPoints(ctx, characters.UpdateHitPointsInput{
		Character: fetched.Character,
		HitPoints: remaining,
	})
	return err
}
