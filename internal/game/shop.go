package game

import (
	"fmt"

	"github.com/tovaldes/postmaster/internal/config"
	"github.com/tovaldes/postmaster/internal/models"
)

// PurchaseResult reports a completed upgrade purchase
type PurchaseResult struct {
	Slot       string `json:"slot"`
	ItemID     string `json:"itemId"`
	ItemName   string `json:"itemName"`
	Cost       int    `json:"cost"`
	NewCredits int    `json:"newCredits"`
}

// Purchase buys a pricing-table upgrade for a slot during the planning phase.
// The upgrade is appended to the slot's role payload; budget enforcement is
// the only rule the core applies. Caller must hold the session lock.
func Purchase(session *models.Session, catalogs *config.Catalogs, slotName, itemID string) (PurchaseResult, error) {
	if session.Phase != models.PhasePlanning {
		return PurchaseResult{}, fmt.Errorf("%w: purchases are a planning action", ErrWrongPhase)
	}
	slot := session.Slot(slotName)
	if slot == nil {
		return PurchaseResult{}, fmt.Errorf("%w: %s", ErrSlotNotFound, slotName)
	}
	if slot.LockedIn {
		return PurchaseResult{}, fmt.Errorf("%w: %s", ErrAlreadyLockedIn, slot.Name)
	}
	item, ok := catalogs.Item(itemID)
	if !ok {
		return PurchaseResult{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if item.Kind != string(slot.Kind) {
		return PurchaseResult{}, fmt.Errorf("%w: %s is not available to %s slots", ErrValidation, item.ID, slot.Kind)
	}
	if slot.Credits < item.Cost {
		return PurchaseResult{}, fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientFunds, item.ID, item.Cost, slot.Credits)
	}

	slot.Credits -= item.Cost
	if slot.Payload == nil {
		slot.Payload = make(map[string]any)
	}
	slot.Payload["upgrades"] = append(ownedUpgrades(slot), item.ID)
	session.Touch()

	return PurchaseResult{
		Slot:       slot.Name,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Cost:       item.Cost,
		NewCredits: slot.Credits,
	}, nil
}

// ownedUpgrades reads the upgrade list out of the role payload. Sessions
// revived from a JSON snapshot carry it as []any rather than []string.
func ownedUpgrades(slot *models.Slot) []string {
	switch owned := slot.Payload["upgrades"].(type) {
	case []string:
		return owned
	case []any:
		ids := make([]string, 0, len(owned))
		for _, v := range owned {
			if id, ok := v.(string); ok {
				ids = append(ids, id)
			}
		}
		return ids
	default:
		return nil
	}
}
