package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tovaldes/postmaster/internal/config"
	"github.com/tovaldes/postmaster/internal/models"
)

// ChoicePrompt identifies the incident choice currently presented to a slot
type ChoicePrompt struct {
	Slot       string `json:"slot"`
	RecordID   string `json:"recordId"`
	IncidentID string `json:"incidentId"`
}

// TriggerResult reports an incident injection
type TriggerResult struct {
	Record  models.IncidentRecord
	Changes []models.EffectChange
	// Prompts lists slots that are now showing a choice they were not
	// showing before this trigger.
	Prompts []ChoicePrompt
}

// ChoiceResult reports a resolved incident choice
type ChoiceResult struct {
	Slot    string
	Changes []models.EffectChange
	// Next is the prompt revealed by popping this choice, if the slot has
	// more queued.
	Next *ChoicePrompt
}

// Trigger applies an incident definition to a session. The history record is
// appended before effects are applied, so history reflects intent. Effect
// incidents mutate their targets in one validated pass; choice incidents
// queue a pending decision on each target slot instead.
// Caller must hold the session lock.
func Trigger(session *models.Session, catalogs *config.Catalogs, incidentID, targetSlot, triggeredBy string) (TriggerResult, error) {
	def, ok := catalogs.Incident(incidentID)
	if !ok {
		return TriggerResult{}, fmt.Errorf("%w: %s", ErrIncidentNotFound, incidentID)
	}
	targets, err := resolveTargets(session, def, targetSlot)
	if err != nil {
		return TriggerResult{}, err
	}

	record := models.IncidentRecord{
		ID:          uuid.New().String(),
		IncidentID:  def.ID,
		Name:        def.Name,
		Target:      recordTarget(def, targets),
		TriggeredBy: triggeredBy,
		TriggeredAt: time.Now(),
		Choice:      def.HasChoice(),
	}

	// The record lands in history before any mutation, so history reflects
	// intent; resolution fills in Changes afterwards.
	session.IncidentHistory = append(session.IncidentHistory, record)
	entry := &session.IncidentHistory[len(session.IncidentHistory)-1]

	result := TriggerResult{}
	if def.HasChoice() {
		for _, slot := range targets {
			hadPrompt := slot.CurrentChoice() != nil
			slot.PendingChoices = append(slot.PendingChoices, models.PendingChoice{
				RecordID:   record.ID,
				IncidentID: def.ID,
				QueuedAt:   time.Now(),
			})
			if !hadPrompt {
				result.Prompts = append(result.Prompts, ChoicePrompt{
					Slot:       slot.Name,
					RecordID:   record.ID,
					IncidentID: def.ID,
				})
			}
		}
	} else {
		for _, slot := range targets {
			entry.Changes = append(entry.Changes, applyEffects(slot, def.Effects)...)
		}
		result.Changes = entry.Changes
	}

	session.Touch()
	result.Record = *entry
	return result, nil
}

// SubmitChoice resolves the choice currently presented to a slot. The choice
// must match the head of the slot's queue; resolving it applies the chosen
// option's effects and reveals the next queued choice, if any.
// Caller must hold the session lock.
func SubmitChoice(session *models.Session, catalogs *config.Catalogs, slotName, incidentID, choiceID string) (ChoiceResult, error) {
	slot := session.Slot(slotName)
	if slot == nil {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrSlotNotFound, slotName)
	}
	pending := slot.CurrentChoice()
	if pending == nil {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrNoPendingChoice, slot.Name)
	}
	if pending.IncidentID != incidentID {
		return ChoiceResult{}, fmt.Errorf("%w: %s is not the presented choice", ErrNoPendingChoice, incidentID)
	}
	def, ok := catalogs.Incident(pending.IncidentID)
	if !ok {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrIncidentNotFound, pending.IncidentID)
	}
	option, ok := def.Option(choiceID)
	if !ok {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrInvalidChoice, choiceID)
	}

	recordID := pending.RecordID
	slot.PendingChoices = slot.PendingChoices[1:]
	changes := applyEffects(slot, option.Effects)

	// Fill in the resolution on the history record that announced the choice.
	for i := range session.IncidentHistory {
		if session.IncidentHistory[i].ID == recordID {
			session.IncidentHistory[i].Changes = append(session.IncidentHistory[i].Changes, changes...)
			break
		}
	}

	result := ChoiceResult{Slot: slot.Name, Changes: changes}
	if next := slot.CurrentChoice(); next != nil {
		result.Next = &ChoicePrompt{
			Slot:       slot.Name,
			RecordID:   next.RecordID,
			IncidentID: next.IncidentID,
		}
	}
	session.Touch()
	return result, nil
}

// applyEffects mutates a slot with a validated effect set and returns the
// changes actually applied. Credits never drop below zero; reputation is
// clamped to its bounds.
func applyEffects(slot *models.Slot, effects []config.EffectDef) []models.EffectChange {
	changes := make([]models.EffectChange, 0, len(effects))
	for _, effect := range effects {
		change := models.EffectChange{Slot: slot.Name, Field: effect.Field, Delta: effect.Delta}
		switch effect.Field {
		case "credits":
			slot.Credits += effect.Delta
			if slot.Credits < 0 {
				slot.Credits = 0
			}
			change.NewValue = slot.Credits
		case "reputation":
			slot.Reputation += effect.Delta
			if slot.Reputation < ReputationFloor {
				slot.Reputation = ReputationFloor
			}
			if slot.Reputation > ReputationCeil {
				slot.Reputation = ReputationCeil
			}
			change.NewValue = slot.Reputation
		case "flag":
			if slot.Payload == nil {
				slot.Payload = make(map[string]any)
			}
			slot.Payload[effect.Flag] = true
			change.Flag = effect.Flag
			change.NewValue = 1
		default:
			continue
		}
		changes = append(changes, change)
	}
	return changes
}

func resolveTargets(session *models.Session, def config.IncidentDef, targetSlot string) ([]*models.Slot, error) {
	switch def.Target {
	case "slot":
		if targetSlot == "" {
			return nil, fmt.Errorf("%w: incident %s requires a target slot", ErrInvalidTarget, def.ID)
		}
		slot := session.Slot(targetSlot)
		if slot == nil || !slot.Occupied() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, targetSlot)
		}
		return []*models.Slot{slot}, nil
	case "teams":
		return occupiedOfKind(session, models.SlotTeam, def.ID)
	case "destinations":
		return occupiedOfKind(session, models.SlotDestination, def.ID)
	case "all":
		targets := session.OccupiedSlots()
		if len(targets) == 0 {
			return nil, fmt.Errorf("%w: no occupied slots for %s", ErrInvalidTarget, def.ID)
		}
		return targets, nil
	default:
		return nil, fmt.Errorf("%w: incident %s has unknown target %q", ErrInvalidTarget, def.ID, def.Target)
	}
}

func occupiedOfKind(session *models.Session, kind models.SlotKind, incidentID string) ([]*models.Slot, error) {
	targets := make([]*models.Slot, 0)
	for _, slot := range session.OccupiedSlots() {
		if slot.Kind == kind {
			targets = append(targets, slot)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no occupied %s slots for %s", ErrInvalidTarget, kind, incidentID)
	}
	return targets, nil
}

func recordTarget(def config.IncidentDef, targets []*models.Slot) string {
	if def.Target == "slot" && len(targets) == 1 {
		return targets[0].Name
	}
	return def.Target
}
