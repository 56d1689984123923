package audit

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skuldata/skuldata-api/internal/models"
)

func setupObserver(t *testing.T) (*Bus, *memLogRepo) {
	t.Helper()
	SetTestMode(true)
	t.Cleanup(func() { SetTestMode(false) })

	recorder, repo := newTestRecorder(t)
	bus := NewBus()
	NewObserver(recorder, zerolog.Nop()).Attach(bus)
	return bus, repo
}

func savedStudent() *models.Student {
	student := &models.Student{Name: "Ada Lovelace", Email: "ada@example.com", Class: "4B"}
	student.ID = 5
	return student
}

func TestObserverRecordsCreation(t *testing.T) {
	bus, repo := setupObserver(t)

	bus.Publish(context.Background(), EntityEvent{
		Kind:   EntityCreated,
		Entity: savedStudent(),
		Actor:  testUser(2),
	})

	entries := repo.all()
	require.Len(t, entries, 1)
	require.Equal(t, "Created Student: Ada Lovelace", entries[0].Action)
	require.Equal(t, models.CategoryCreate, entries[0].Category)
	require.Equal(t, "Ada Lovelace", entries[0].Metadata["display"])
	require.Equal(t, "Student", *entries[0].TargetType)
}

func TestObserverFallsBackToAmbientActor(t *testing.T) {
	bus, repo := setupObserver(t)

	ctx := WithActor(context.Background(), testUser(4))
	bus.Publish(ctx, EntityEvent{Kind: EntityCreated, Entity: savedStudent()})

	entries := repo.all()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].ActorID)
	require.Equal(t, uint(4), *entries[0].ActorID)
}

func TestObserverSkipsUnattributedMutation(t *testing.T) {
	bus, repo := setupObserver(t)

	bus.Publish(context.Background(), EntityEvent{Kind: EntityCreated, Entity: savedStudent()})
	require.Empty(t, repo.all())
}

func TestObserverSkipsNoDiffUpdate(t *testing.T) {
	bus, repo := setupObserver(t)

	bus.Publish(context.Background(), EntityEvent{
		Kind:    EntityUpdated,
		Entity:  savedStudent(),
		Actor:   testUser(2),
		Changes: &ChangeSet{},
	})
	require.Empty(t, repo.all())
}

func TestObserverRecordsUpdateDiff(t *testing.T) {
	bus, repo := setupObserver(t)

	bus.Publish(context.Background(), EntityEvent{
		Kind:   EntityUpdated,
		Entity: savedStudent(),
		Actor:  testUser(2),
		Changes: &ChangeSet{
			Fields: []string{"class"},
			Old:    map[string]interface{}{"class": "4A"},
			New:    map[string]interface{}{"class": "4B"},
		},
	})

	entries := repo.all()
	require.Len(t, entries, 1)
	require.Equal(t, models.CategoryUpdate, entries[0].Category)

	fields, ok := entries[0].Metadata["fields_changed"].([]string)
	require.True(t, ok)
	require.Equal(t, "class", fields[0])
}

func TestObserverRecordsDeletionWithExtract(t *testing.T) {
	bus, repo := setupObserver(t)

	bus.Publish(context.Background(), EntityEvent{
		Kind:    EntityDeleted,
		Entity:  savedStudent(),
		Actor:   testUser(2),
		Extract: map[string]interface{}{"deleted_id": uint(5)},
	})

	entries := repo.all()
	require.Len(t, entries, 1)
	require.Equal(t, models.CategoryDelete, entries[0].Category)
	require.Equal(t, uint(5), entries[0].Metadata["deleted_id"])
}

func TestObserverHonoursDenyList(t *testing.T) {
	SetTestMode(true)
	t.Cleanup(func() { SetTestMode(false) })

	recorder, repo := newTestRecorder(t)
	observer := NewObserver(recorder, zerolog.Nop())
	observer.Deny("Student")

	bus := NewBus()
	observer.Attach(bus)

	bus.Publish(context.Background(), EntityEvent{
		Kind:   EntityCreated,
		Entity: savedStudent(),
		Actor:  testUser(2),
	})
	require.Empty(t, repo.all())
}
