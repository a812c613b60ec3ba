package game

import (
	"testing"
	"time"

	"github.com/tovaldes/postmaster/internal/config"
	"github.com/tovaldes/postmaster/internal/models"
	"github.com/tovaldes/postmaster/internal/store"
)

func testCatalogs() *config.Catalogs {
	return &config.Catalogs{
		Roster: []config.SlotDef{
			{Name: "SendWave", Kind: "team", Capacity: 4, Credits: 1000, Reputation: 70},
			{Name: "Blastoff", Kind: "team", Capacity: 4, Credits: 1000, Reputation: 70},
			{Name: "Gmail", Kind: "destination", Capacity: 4, Credits: 500, Reputation: 90},
			{Name: "Outlook", Kind: "destination", Capacity: 4, Credits: 500, Reputation: 85},
		},
		Incidents: []config.IncidentDef{
			{
				ID: "spam-trap-hit", Name: "Spam Trap Hit", Target: "slot",
				Effects: []config.EffectDef{
					{Field: "reputation", Delta: -15},
					{Field: "credits", Delta: -100},
				},
			},
			{
				ID: "industry-audit", Name: "Industry Audit", Target: "all",
				Effects: []config.EffectDef{{Field: "reputation", Delta: -5}},
			},
			{
				ID: "compromised-account", Name: "Compromised Account", Target: "slot",
				Options: []config.ChoiceOptionDef{
					{ID: "suspend", Label: "Suspend", Effects: []config.EffectDef{
						{Field: "credits", Delta: -200},
						{Field: "reputation", Delta: 5},
					}},
					{ID: "ignore", Label: "Ignore", Effects: []config.EffectDef{
						{Field: "credits", Delta: 100},
						{Field: "reputation", Delta: -25},
					}},
				},
			},
			{
				ID: "filter-tuning", Name: "Filter Tuning", Target: "destinations",
				Options: []config.ChoiceOptionDef{
					{ID: "deploy", Label: "Deploy", Effects: []config.EffectDef{
						{Field: "flag", Flag: "aggressive_filtering"},
					}},
				},
			},
		},
		Pricing: []config.PricingItem{
			{ID: "dedicated-ip", Name: "Dedicated IP Pool", Cost: 300, Kind: "team"},
			{ID: "ml-filter", Name: "ML Filter Upgrade", Cost: 250, Kind: "destination"},
		},
	}
}

func testRules() Rules {
	return Rules{TotalRounds: 3, PlanningSeconds: 300, ResolutionSeconds: 120}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(store.NewMemoryStore(), testCatalogs())
}

// newTestSession creates a session with players in the named slots
func newTestSession(t *testing.T, occupied ...string) *models.Session {
	t.Helper()
	registry := newTestRegistry(t)
	session, err := registry.CreateSession("facilitator-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	for i, slotName := range occupied {
		if _, err := JoinSlot(session, slotName, "player-"+slotName+"-"+string(rune('a'+i))); err != nil {
			t.Fatalf("JoinSlot(%s): %v", slotName, err)
		}
	}
	return session
}

// startGame moves a lobby session into planning round 1
func startGame(t *testing.T, session *models.Session) {
	t.Helper()
	if err := CanStart(session, session.FacilitatorID); err != nil {
		t.Fatalf("CanStart: %v", err)
	}
	if _, err := Transition(session, models.PhasePlanning, testRules()); err != nil {
		t.Fatalf("Transition to planning: %v", err)
	}
}

// rewindTimer shifts the timer's start back so remaining seconds land where
// the test needs them
func rewindTimer(session *models.Session, now time.Time, elapsed time.Duration) {
	session.Timer.StartedAt = now.Add(-elapsed)
}
