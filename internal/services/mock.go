package services

import (
	"context"

	"zonewatch/internal/rules"
	"zonewatch/pkg/chat"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	Actors   map[string]*rules.ActorSpec
	TankRows map[string][]rules.Tank // keyed by actor id

	SaveTankErr error
	Saved       []rules.Tank
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Actors:   make(map[string]*rules.ActorSpec),
		TankRows: make(map[string][]rules.Tank),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }

func (m *MockStorage) GetActorSpec(ctx context.Context, actorID string) (*rules.ActorSpec, error) {
	return m.Actors[actorID], nil
}

func (m *MockStorage) SaveActorSpec(ctx context.Context, spec *rules.ActorSpec) error {
	m.Actors[spec.ID] = spec
	return nil
}

func (m *MockStorage) Tanks(ctx context.Context, actorID string) ([]rules.Tank, error) {
	return m.TankRows[actorID], nil
}

func (m *MockStorage) SaveTank(ctx context.Context, tank rules.Tank) error {
	if m.SaveTankErr != nil {
		return m.SaveTankErr
	}
	m.Saved = append(m.Saved, tank)
	tanks := m.TankRows[tank.ActorID]
	for i, t := range tanks {
		if t.ID == tank.ID {
			tanks[i] = tank
			return nil
		}
	}
	m.TankRows[tank.ActorID] = append(tanks, tank)
	return nil
}

// ActorFor mirrors RedisStorage.ActorFor: supply attributes declared on
// the spec are recomputed from active tanks when tank records exist.
func (m *MockStorage) ActorFor(ctx context.Context, actorID string) (*rules.Actor, error) {
	spec := m.Actors[actorID]
	if spec == nil {
		return nil, nil
	}

	totals := make(map[string]int)
	seen := make(map[string]bool)
	for _, t := range m.TankRows[actorID] {
		seen[t.Kind] = true
		if t.Active {
			totals[t.Kind] += t.Supply
		}
	}
	for kind := range seen {
		if _, declared := spec.Attributes[kind]; declared {
			spec.Attributes[kind] = totals[kind]
		}
	}

	return rules.NewActorFromSpec(spec)
}

// MockMessenger records posted messages for assertions.
type MockMessenger struct {
	Messages []chat.Message
	PostErr  error
}

var _ chat.Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) Post(ctx context.Context, msg chat.Message) error {
	if m.PostErr != nil {
		return m.PostErr
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// MockEngine reports a fixed active ruleset.
type MockEngine struct {
	Ruleset string
}

var _ rules.Engine = (*MockEngine)(nil)

func (m *MockEngine) ActiveRuleset() string { return m.Ruleset }
