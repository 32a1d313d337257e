package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"zonewatch/pkg/chat"
	"zonewatch/pkg/token"
	"zonewatch/pkg/zone"
)

type fakeStore struct {
	specs map[string]*ActorSpec
	tanks map[string][]Tank

	saved   []Tank
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		specs: make(map[string]*ActorSpec),
		tanks: make(map[string][]Tank),
	}
}

func (f *fakeStore) ActorFor(ctx context.Context, actorID string) (*Actor, error) {
	spec := f.specs[actorID]
	if spec == nil {
		return nil, nil
	}
	return NewActorFromSpec(spec)
}

func (f *fakeStore) Tanks(ctx context.Context, actorID string) ([]Tank, error) {
	return f.tanks[actorID], nil
}

func (f *fakeStore) SaveTank(ctx context.Context, tank Tank) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, tank)
	return nil
}

type fakeEngine struct {
	ruleset string
}

func (f *fakeEngine) ActiveRuleset() string { return f.ruleset }

type fakeRoller struct {
	calls   int
	lastReq SupplyRollRequest
	result  SupplyRollResult
	err     error
}

func (f *fakeRoller) SupplyRoll(ctx context.Context, req SupplyRollRequest) (SupplyRollResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return SupplyRollResult{}, f.err
	}
	return f.result, nil
}

type recordingMessenger struct {
	messages []chat.Message
}

func (r *recordingMessenger) Post(ctx context.Context, msg chat.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func unbreathableCfg() zone.TypeConfig {
	return zone.NewRegistry().ConfigFor(zone.TypeUnbreathable)
}

func testOrchestrator(store *fakeStore, roller *fakeRoller, ruleset string) (*Orchestrator, *recordingMessenger) {
	messenger := &recordingMessenger{}
	o := NewOrchestrator(&fakeEngine{ruleset: ruleset}, store, roller, messenger, RulesetAlien, "Zone Watch", quietLogger())
	return o, messenger
}

func airSpec(id string, supply int) *ActorSpec {
	return &ActorSpec{
		ID:         id,
		Name:       "Crew " + id,
		MaxHP:      10,
		Attributes: map[string]int{zone.SupplyKindAir: supply},
	}
}

func testZone() zone.Zone {
	return zone.Zone{
		ID:    "z1",
		Name:  "Cargo Hold",
		Flags: zone.Flags{Enabled: true, ZoneType: zone.TypeUnbreathable},
	}
}

func TestOrchestrator_RulesetMismatch(t *testing.T) {
	store := newFakeStore()
	roller := &fakeRoller{}
	o, messenger := testOrchestrator(store, roller, "dnd5e")

	tok := token.Token{ID: "t1", Name: "Ripley", ActorID: "a1", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}

	if roller.calls != 0 {
		t.Errorf("roller must not be invoked on ruleset mismatch, got %d calls", roller.calls)
	}
	if len(messenger.messages) != 1 || messenger.messages[0].Category != chat.CategoryOOC {
		t.Fatalf("expected one OOC configuration warning, got %+v", messenger.messages)
	}
	if !strings.Contains(messenger.messages[0].Content, "ruleset") {
		t.Errorf("warning should mention the ruleset: %q", messenger.messages[0].Content)
	}
}

func TestOrchestrator_NoActor(t *testing.T) {
	store := newFakeStore()
	roller := &fakeRoller{}
	o, messenger := testOrchestrator(store, roller, RulesetAlien)

	// Token without an actor association terminates silently.
	tok := token.Token{ID: "t1", Name: "Crate", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}
	if roller.calls != 0 || len(messenger.messages) != 0 {
		t.Errorf("expected silent termination, got %d rolls, %d messages", roller.calls, len(messenger.messages))
	}

	// Unknown actor id behaves the same.
	tok.ActorID = "missing"
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}
	if roller.calls != 0 || len(messenger.messages) != 0 {
		t.Errorf("expected silent termination, got %d rolls, %d messages", roller.calls, len(messenger.messages))
	}
}

func TestOrchestrator_UntrackedSupplyKind(t *testing.T) {
	store := newFakeStore()
	store.specs["a1"] = &ActorSpec{ID: "a1", Name: "Jonesy", MaxHP: 5}
	roller := &fakeRoller{}
	o, messenger := testOrchestrator(store, roller, RulesetAlien)

	tok := token.Token{ID: "t1", Name: "Jonesy", ActorID: "a1", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}

	if roller.calls != 0 {
		t.Errorf("roller must not be invoked for untracked actors, got %d calls", roller.calls)
	}
	if len(messenger.messages) != 1 || !strings.Contains(messenger.messages[0].Content, "manually") {
		t.Fatalf("expected manual prompt fallback, got %+v", messenger.messages)
	}
}

func TestOrchestrator_ZeroSupplyShortCircuits(t *testing.T) {
	store := newFakeStore()
	store.specs["a1"] = airSpec("a1", 0)
	roller := &fakeRoller{}
	o, messenger := testOrchestrator(store, roller, RulesetAlien)

	tok := token.Token{ID: "t1", Name: "Dallas", ActorID: "a1", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}

	if roller.calls != 0 {
		t.Errorf("roller must not be invoked at zero supply, got %d calls", roller.calls)
	}
	if len(messenger.messages) != 2 {
		t.Fatalf("expected dramatic IC message plus OOC alert, got %+v", messenger.messages)
	}
	if messenger.messages[0].Category != chat.CategoryIC || messenger.messages[1].Category != chat.CategoryOOC {
		t.Errorf("unexpected categories: %s, %s", messenger.messages[0].Category, messenger.messages[1].Category)
	}
}

func TestOrchestrator_RollParameterization(t *testing.T) {
	store := newFakeStore()
	store.specs["a1"] = airSpec("a1", 5)
	roller := &fakeRoller{result: SupplyRollResult{Results: []int{2, 3, 4, 5, 6}}}
	o, _ := testOrchestrator(store, roller, RulesetAlien)

	tok := token.Token{ID: "t1", Name: "Lambert", ActorID: "a1", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}

	if roller.calls != 1 {
		t.Fatalf("expected exactly one roll, got %d", roller.calls)
	}
	if roller.lastReq.Base != 0 {
		t.Errorf("base dice must be zero, got %d", roller.lastReq.Base)
	}
	if roller.lastReq.Stress != 5 {
		t.Errorf("stress dice must equal supply, got %d", roller.lastReq.Stress)
	}
	if roller.lastReq.Blind {
		t.Error("roll for a friendly token must not be blind")
	}
	if len(store.saved) != 0 {
		t.Errorf("no ones rolled, nothing should be depleted: %+v", store.saved)
	}
}

func TestOrchestrator_HostileTokenRollsBlind(t *testing.T) {
	store := newFakeStore()
	store.specs["a1"] = airSpec("a1", 3)
	roller := &fakeRoller{result: SupplyRollResult{Results: []int{2, 2, 2}}}
	o, _ := testOrchestrator(store, roller, RulesetAlien)

	tok := token.Token{ID: "t1", Name: "Working Joe", ActorID: "a1", PlayerOwned: true, Hostile: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}
	if !roller.lastReq.Blind {
		t.Error("hostile token must roll blind")
	}
}

func TestOrchestrator_OnesTriggerDepletion(t *testing.T) {
	store := newFakeStore()
	store.specs["a1"] = airSpec("a1", 4)
	store.tanks["a1"] = []Tank{
		{ID: "tank1", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 4, Active: true},
	}
	roller := &fakeRoller{result: SupplyRollResult{Results: []int{1, 1, 3, 6}, Ones: 2}}
	o, _ := testOrchestrator(store, roller, RulesetAlien)

	tok := token.Token{ID: "t1", Name: "Kane", ActorID: "a1", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected one persisted decrement, got %+v", store.saved)
	}
	if store.saved[0].Supply != 2 {
		t.Errorf("tank should drop from 4 to 2, got %d", store.saved[0].Supply)
	}
}

func TestOrchestrator_RollFailureFallsBackToManualPrompt(t *testing.T) {
	store := newFakeStore()
	store.specs["a1"] = airSpec("a1", 2)
	roller := &fakeRoller{err: fmt.Errorf("engine unavailable")}
	o, messenger := testOrchestrator(store, roller, RulesetAlien)

	tok := token.Token{ID: "t1", Name: "Parker", ActorID: "a1", PlayerOwned: true}
	if err := o.HandleEntry(context.Background(), tok, testZone(), unbreathableCfg()); err != nil {
		t.Fatalf("HandleEntry failed: %v", err)
	}

	if len(messenger.messages) != 1 || !strings.Contains(messenger.messages[0].Content, "manually") {
		t.Fatalf("roll failure must fall back to the manual prompt, got %+v", messenger.messages)
	}
}

func TestDeplete_SmallestTanksFirst(t *testing.T) {
	store := newFakeStore()
	store.tanks["a1"] = []Tank{
		{ID: "a", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 3, Active: true},
		{ID: "b", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 1, Active: true},
		{ID: "c", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 5, Active: true},
	}
	roller := &fakeRoller{}
	o, _ := testOrchestrator(store, roller, RulesetAlien)

	if err := o.deplete(context.Background(), "a1", zone.SupplyKindAir, 4); err != nil {
		t.Fatalf("deplete failed: %v", err)
	}

	if len(store.saved) != 2 {
		t.Fatalf("expected 2 persisted decrements, got %+v", store.saved)
	}
	if store.saved[0].ID != "b" || store.saved[0].Supply != 0 {
		t.Errorf("smallest tank first: got %+v", store.saved[0])
	}
	if store.saved[1].ID != "a" || store.saved[1].Supply != 0 {
		t.Errorf("second smallest next: got %+v", store.saved[1])
	}
	// c keeps its full 5 units: never touched, never saved.
}

func TestDeplete_SkipsInactiveAndOtherKinds(t *testing.T) {
	store := newFakeStore()
	store.tanks["a1"] = []Tank{
		{ID: "inactive", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 10, Active: false},
		{ID: "fuel", ActorID: "a1", Kind: "fuel", Supply: 10, Active: true},
		{ID: "air", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 2, Active: true},
	}
	roller := &fakeRoller{}
	o, _ := testOrchestrator(store, roller, RulesetAlien)

	if err := o.deplete(context.Background(), "a1", zone.SupplyKindAir, 1); err != nil {
		t.Fatalf("deplete failed: %v", err)
	}

	if len(store.saved) != 1 || store.saved[0].ID != "air" || store.saved[0].Supply != 1 {
		t.Errorf("only the active air tank may be consumed: %+v", store.saved)
	}
}

func TestDeplete_UnderSupplyDoesNotRaise(t *testing.T) {
	store := newFakeStore()
	store.tanks["a1"] = []Tank{
		{ID: "a", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 3, Active: true},
		{ID: "b", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 1, Active: true},
		{ID: "c", ActorID: "a1", Kind: zone.SupplyKindAir, Supply: 5, Active: true},
	}
	roller := &fakeRoller{}
	o, _ := testOrchestrator(store, roller, RulesetAlien)

	if err := o.deplete(context.Background(), "a1", zone.SupplyKindAir, 100); err != nil {
		t.Fatalf("under-supply must not raise: %v", err)
	}

	if len(store.saved) != 3 {
		t.Fatalf("expected all 3 tanks drained, got %+v", store.saved)
	}
	for _, saved := range store.saved {
		if saved.Supply != 0 {
			t.Errorf("tank %s should be empty, got %d", saved.ID, saved.Supply)
		}
	}
}
