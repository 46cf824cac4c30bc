package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/martijn/evently/internal/api/util"
	"github.com/martijn/evently/internal/core/domain"
	"github.com/martijn/evently/internal/core/repository"
	"github.com/martijn/evently/internal/infrastructure/sqlite"
	"github.com/martijn/evently/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	service  *EventService
	events   repository.EventRepository
	alice    *domain.User
	bob      *domain.User
	registry *prometheus.Registry
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	events := sqlite.NewEventRepository(db)

	alice := domain.NewUser("alice", "alice@example.com", "hash")
	bob := domain.NewUser("bob", "bob@example.com", "hash")
	require.NoError(t, users.Create(context.Background(), alice))
	require.NoError(t, users.Create(context.Background(), bob))

	reg := prometheus.NewRegistry()
	svc := NewEventService(events, nil, metrics.NewCollector(reg), nil)

	return &eventFixture{service: svc, events: events, alice: alice, bob: bob, registry: reg}
}

func standup() domain.EventInput {
	return domain.EventInput{
		Title:         "Standup",
		Description:   "Daily sync",
		Date:          "2024-01-10T09:00:00Z",
		Location:      "Room A",
		OrganizerName: "Alice",
	}
}

func TestCreateEventSetsOrganizerFromPrincipal(t *testing.T) {
	f := newEventFixture(t)

	// organizerName claims to be Bob; the principal is still Alice
	in := standup()
	in.OrganizerName = "Bob"

	event, err := f.service.CreateEvent(context.Background(), f.alice.ID, in)
	require.NoError(t, err)

	assert.Equal(t, f.alice.ID, event.OrganizerID)
	assert.Equal(t, "alice", event.OrganizerUsername)
	assert.Equal(t, "Bob", event.OrganizerName)
	assert.NotEmpty(t, event.ID)
}

func TestCreateEventRoundTrip(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateEvent(ctx, f.alice.ID, standup())
	require.NoError(t, err)

	fetched, err := f.service.GetEvent(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Description, fetched.Description)
	assert.True(t, created.Date.Equal(fetched.Date))
	assert.Equal(t, created.Location, fetched.Location)
	assert.Equal(t, created.OrganizerName, fetched.OrganizerName)
	assert.Equal(t, created.OrganizerID, fetched.OrganizerID)
}

func TestCreateEventValidation(t *testing.T) {
	f := newEventFixture(t)

	in := standup()
	in.Location = ""
	in.Title = "<b></b>"

	_, err := f.service.CreateEvent(context.Background(), f.alice.ID, in)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("location"))
	assert.True(t, verr.Has("title"))
	assert.Len(t, verr.Violations, 2)

	count, err := f.events.Count(context.Background(), repository.EventFilter{})
	require.NoError(t, err)
	assert.Zero(t, count, "rejected create must not persist")
}

func TestCreateEventRequiresPrincipal(t *testing.T) {
	f := newEventFixture(t)

	_, err := f.service.CreateEvent(context.Background(), "", standup())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCreateEventStripsMarkup(t *testing.T) {
	f := newEventFixture(t)

	in := standup()
	in.Description = `Daily <script>alert("x")</script>sync`

	event, err := f.service.CreateEvent(context.Background(), f.alice.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Daily sync", event.Description)
}

func TestNonOwnerMutationsAreRejected(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, f.alice.ID, standup())
	require.NoError(t, err)

	changed := standup()
	changed.Location = "Room B"

	_, err = f.service.UpdateEvent(ctx, f.bob.ID, event.ID, changed)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Ownership is checked before validation
	_, err = f.service.UpdateEvent(ctx, f.bob.ID, event.ID, domain.EventInput{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.service.DeleteEvent(ctx, f.bob.ID, event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.service.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Room A", stored.Location)
	assert.Equal(t, event.UpdatedAt, stored.UpdatedAt)

	assert.Equal(t, 2.0, mutationCount(t, f, OpUpdate, metrics.OutcomeForbidden))
	assert.Equal(t, 1.0, mutationCount(t, f, OpDelete, metrics.OutcomeForbidden))
}

func TestOwnerScenario(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, f.alice.ID, standup())
	require.NoError(t, err)

	changed := standup()
	changed.Location = "Room B"
	updated, err := f.service.UpdateEvent(ctx, f.alice.ID, event.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, "Room B", updated.Location)
	assert.Equal(t, f.alice.ID, updated.OrganizerID)

	invalid := changed
	invalid.Date = "soon"
	invalid.Description = ""
	_, err = f.service.UpdateEvent(ctx, f.alice.ID, event.ID, invalid)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("date"))
	assert.True(t, verr.Has("description"))

	require.NoError(t, f.service.DeleteEvent(ctx, f.alice.ID, event.ID))

	_, err = f.service.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.service.DeleteEvent(ctx, f.alice.ID, event.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEventsPagination(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		in := standup()
		in.Title = fmt.Sprintf("Event %02d", i)
		// Reverse date order relative to insertion
		in.Date = fmt.Sprintf("2024-01-%02dT09:00:00Z", 28-i)
		_, err := f.service.CreateEvent(ctx, f.alice.ID, in)
		require.NoError(t, err)
	}

	for _, perPage := range []int{1, 5, 10, 23, 50} {
		for page := 1; page <= util.TotalPages(23, perPage)+1; page++ {
			result, err := f.service.ListEvents(ctx, repository.EventFilter{
				ListFilter: util.ListFilter{Page: page, PerPage: perPage},
			})
			require.NoError(t, err)

			assert.Equal(t, 23, result.Total)
			assert.Equal(t, (23+perPage-1)/perPage, result.TotalPages)
			assert.LessOrEqual(t, len(result.Events), perPage)
			for i := 1; i < len(result.Events); i++ {
				assert.False(t, result.Events[i].Date.Before(result.Events[i-1].Date))
			}
		}
	}
}

// racingRepo simulates the organizer changing between the ownership check
// and the write.
type racingRepo struct {
	repository.EventRepository
}

func (r racingRepo) UpdateOwned(ctx context.Context, event *domain.Event, organizerID string) (bool, error) {
	return false, nil
}

func (r racingRepo) DeleteOwned(ctx context.Context, id, organizerID string) (bool, error) {
	return false, nil
}

func TestConditionalWriteClosesRace(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	event, err := f.service.CreateEvent(ctx, f.alice.ID, standup())
	require.NoError(t, err)

	racing := NewEventService(racingRepo{f.events}, nil, nil, nil)

	_, err = racing.UpdateEvent(ctx, f.alice.ID, event.ID, standup())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = racing.DeleteEvent(ctx, f.alice.ID, event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func mutationCount(t *testing.T, f *eventFixture, op, outcome string) float64 {
	t.Helper()

	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "evently_event_mutations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["operation"] == op && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
