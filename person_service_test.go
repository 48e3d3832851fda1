package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/goliatone/go-person-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPersonService(t *testing.T, now time.Time, opts ...auth.PersonServiceOption) (*auth.PersonService, auth.RepositoryManager) {
	t.Helper()
	repo := newTestRepo(t, now)
	opts = append([]auth.PersonServiceOption{auth.WithPersonClock(fixedClock(now))}, opts...)
	return auth.NewPersonService(repo.Persons(), opts...), repo
}

func seedPerson(t *testing.T, svc *auth.PersonService, in auth.PersonInput) *auth.Person {
	t.Helper()
	p, err := svc.Create(context.Background(), nil, in)
	require.NoError(t, err)
	return p
}

func TestPersonService_Create(t *testing.T) {
	ctx := context.Background()
	now := mustTime(t, "2024-05-01T10:00:00Z")
	svc, repo := newPersonService(t, now)

	created, err := svc.Create(ctx, nil, auth.PersonInput{
		Vorname:       "Anna",
		Nachname:      "Schmidt",
		Email:         "Anna@Example.com",
		Telefonnummer: "030 1234567",
		Password:      "geheim",
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "anna@example.com", created.Email)
	assert.Equal(t, "+49301234567", created.Telefonnummer)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "geheim", created.PasswordHash)

	t.Run("duplicate email is a conflict and inserts nothing", func(t *testing.T) {
		_, err := svc.Create(ctx, nil, auth.PersonInput{
			Vorname:  "Andere",
			Nachname: "Person",
			Email:    "anna@example.com",
		})
		assert.ErrorIs(t, err, auth.ErrConflict)
		assert.Equal(t, 409, auth.StatusFor(err))

		all, err := repo.Persons().List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("duplicate phone in another format is a conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, nil, auth.PersonInput{
			Vorname:       "Dritte",
			Nachname:      "Person",
			Email:         "dritte@example.com",
			Telefonnummer: "+49 30 1234567",
		})
		assert.ErrorIs(t, err, auth.ErrConflict)
	})

	t.Run("missing email is a validation error", func(t *testing.T) {
		_, err := svc.Create(ctx, nil, auth.PersonInput{Vorname: "X", Nachname: "Y"})
		assert.Equal(t, 400, auth.StatusFor(err))
	})
}

func TestPersonService_Update(t *testing.T) {
	ctx := context.Background()
	now := mustTime(t, "2024-05-01T10:00:00Z")
	svc, _ := newPersonService(t, now)

	anna := seedPerson(t, svc, auth.PersonInput{
		Vorname:  "Anna",
		Nachname: "Schmidt",
		Email:    "anna@example.com",
		PLZ:      "10115",
		Ort:      "Berlin",
	})
	seedPerson(t, svc, auth.PersonInput{Vorname: "Bert", Nachname: "Meier", Email: "bert@example.com"})

	t.Run("single field patch leaves the rest untouched", func(t *testing.T) {
		updated, err := svc.Update(ctx, nil, idString(anna.ID), auth.PersonPatch{PLZ: strPtr("20095")})
		require.NoError(t, err)

		assert.Equal(t, "20095", updated.PLZ)
		assert.Equal(t, "Anna", updated.Vorname)
		assert.Equal(t, "Schmidt", updated.Nachname)
		assert.Equal(t, "Berlin", updated.Ort)
		assert.Equal(t, "anna@example.com", updated.Email)
	})

	t.Run("duplicate email is a conflict and nothing is applied", func(t *testing.T) {
		_, err := svc.Update(ctx, nil, idString(anna.ID), auth.PersonPatch{
			Ort:   strPtr("Hamburg"),
			Email: strPtr("bert@example.com"),
		})
		assert.ErrorIs(t, err, auth.ErrConflict)

		current, err := svc.Get(ctx, idString(anna.ID))
		require.NoError(t, err)
		assert.Equal(t, "Berlin", current.Ort)
		assert.Equal(t, "anna@example.com", current.Email)
	})

	t.Run("password change is hashed", func(t *testing.T) {
		updated, err := svc.Update(ctx, nil, idString(anna.ID), auth.PersonPatch{Password: strPtr("neu")})
		require.NoError(t, err)
		assert.NoError(t, auth.ComparePasswordAndHash("neu", updated.PasswordHash))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, nil, "999", auth.PersonPatch{PLZ: strPtr("1")})
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.Equal(t, 404, auth.StatusFor(err))
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, nil, idString(anna.ID), auth.PersonPatch{Email: strPtr("nope")})
		assert.Equal(t, 400, auth.StatusFor(err))
	})
}

func TestPersonService_UpdateRejectsBeforeStore(t *testing.T) {
	ctx := context.Background()
	store := new(MockPersons)
	svc := auth.NewPersonService(store)

	t.Run("empty patch", func(t *testing.T) {
		_, err := svc.Update(ctx, nil, "5", auth.PersonPatch{})
		assert.ErrorIs(t, err, auth.ErrNoFieldsToUpdate)
		assert.Equal(t, 400, auth.StatusFor(err))
	})

	t.Run("non numeric id", func(t *testing.T) {
		_, err := svc.Update(ctx, nil, "abc", auth.PersonPatch{PLZ: strPtr("1")})
		assert.ErrorIs(t, err, auth.ErrInvalidID)
	})

	store.AssertNotCalled(t, "UpdateColumns", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestPersonService_StoreFailureIsServerError(t *testing.T) {
	ctx := context.Background()
	store := new(MockPersons)
	logger := &captureLogger{}
	svc := auth.NewPersonService(store, auth.WithPersonLogger(logger))

	store.On("List", mock.Anything).Return(nil, errors.New("driver: bad connection"))

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, auth.ErrStore)
	assert.Equal(t, 500, auth.StatusFor(err))
	assert.True(t, logger.has("error", "person store failure"))
}

func TestPersonService_StoreTimeout(t *testing.T) {
	store := new(MockPersons)
	svc := auth.NewPersonService(store, auth.WithPersonStoreTimeout(20*time.Millisecond))

	store.On("GetByID", mock.Anything, int64(1)).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(nil, context.DeadlineExceeded)

	_, err := svc.Get(context.Background(), "1")
	assert.Equal(t, 500, auth.StatusFor(err))
}

func TestPersonService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	now := mustTime(t, "2024-05-01T10:00:00Z")
	sink := &recordingSink{}
	svc, _ := newPersonService(t, now, auth.WithPersonActivitySink(sink))

	p := seedPerson(t, svc, auth.PersonInput{Vorname: "Anna", Nachname: "Schmidt", Email: "anna@example.com"})

	got, err := svc.Get(ctx, idString(p.ID))
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(ctx, "x1")
	assert.ErrorIs(t, err, auth.ErrInvalidID)

	id, err := svc.Delete(ctx, nil, idString(p.ID))
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)

	_, err = svc.Get(ctx, idString(p.ID))
	assert.ErrorIs(t, err, auth.ErrNotFound)

	_, err = svc.Delete(ctx, nil, idString(p.ID))
	assert.ErrorIs(t, err, auth.ErrNotFound)

	assert.Equal(t, []auth.ActivityEventType{
		auth.ActivityEventPersonCreated,
		auth.ActivityEventPersonDeleted,
	}, sink.types())
}

func TestPersonService_ListOrdered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPersonService(t, mustTime(t, "2024-05-01T10:00:00Z"))

	seedPerson(t, svc, auth.PersonInput{Vorname: "A", Nachname: "A", Email: "a@example.com"})
	seedPerson(t, svc, auth.PersonInput{Vorname: "B", Nachname: "B", Email: "b@example.com"})

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Less(t, all[0].ID, all[1].ID)
}
