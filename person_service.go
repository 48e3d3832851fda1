package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// PersonService implements CRUD and partial updates on persons.
// Every store call is bounded by the configured timeout.
type PersonService struct {
	store        Persons
	timeout      time.Duration
	logger       Logger
	activitySink ActivitySink
	now          Clock
}

// PersonServiceOption configures a PersonService.
type PersonServiceOption func(*PersonService)

func WithPersonStoreTimeout(d time.Duration) PersonServiceOption {
	return func(s *PersonService) {
		s.timeout = d
	}
}

func WithPersonLogger(l Logger) PersonServiceOption {
	return func(s *PersonService) {
		s.logger = normalizeLogger(l)
	}
}

func WithPersonActivitySink(sink ActivitySink) PersonServiceOption {
	return func(s *PersonService) {
		s.activitySink = normalizeActivitySink(sink)
	}
}

func WithPersonClock(now Clock) PersonServiceOption {
	return func(s *PersonService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewPersonService(store Persons, opts ...PersonServiceOption) *PersonService {
	s := &PersonService{
		store:        store,
		timeout:      DefaultStoreTimeout,
		logger:       defaultLogger(),
		activitySink: noopActivitySink{},
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *PersonService) List(ctx context.Context) ([]*Person, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeFailure(err, "persons.list")
	}
	return records, nil
}

// Get returns the person with rawID. The id is validated before the
// store is touched.
func (s *PersonService) Get(ctx context.Context, rawID string) (*Person, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *PersonService) get(ctx context.Context, id int64) (*Person, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure(err, "persons.get")
	}
	return record, nil
}

// Create validates in, inserts it and returns the stored record. A
// duplicate email or phone number fails with a conflict and nothing is
// inserted.
func (s *PersonService) Create(ctx context.Context, actor AuthClaims, in PersonInput) (*Person, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	record, err := in.ToPerson()
	if err != nil {
		return nil, err
	}

	created, err := s.create(ctx, record)
	if err != nil {
		return nil, err
	}

	// read back so defaults applied by the database are visible
	current, err := s.get(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventPersonCreated, actor, current.ID, nil)
	return current, nil
}

func (s *PersonService) create(ctx context.Context, record *Person) (*Person, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, s.storeFailure(err, "persons.create")
	}
	return created, nil
}

// Update applies patch to the person with rawID in a single statement
// and returns the record as stored afterwards.
func (s *PersonService) Update(ctx context.Context, actor AuthClaims, rawID string, patch PersonPatch) (*Person, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	cols, err := patch.Columns()
	if err != nil {
		return nil, err
	}

	if err := s.update(ctx, id, cols); err != nil {
		return nil, err
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, c.Column)
	}
	s.emit(ctx, ActivityEventPersonUpdated, actor, id, map[string]any{"fields": fields})

	return current, nil
}

func (s *PersonService) update(ctx context.Context, id int64, cols []ColumnValue) error {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.UpdateColumns(ctx, id, cols); err != nil {
		return s.storeFailure(err, "persons.update")
	}
	return nil
}

// Delete removes the person with rawID.
func (s *PersonService) Delete(ctx context.Context, actor AuthClaims, rawID string) (int64, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Delete(ctx, id); err != nil {
		return 0, s.storeFailure(err, "persons.delete")
	}

	s.emit(ctx, ActivityEventPersonDeleted, actor, id, nil)
	return id, nil
}

func (s *PersonService) storeFailure(err error, op string) error {
	mapped := mapStoreError(err, op)
	if IsCategory(mapped, CategoryStore) {
		s.logger.Error("person store failure", "operation", op, "error", err)
	}
	return mapped
}

func (s *PersonService) emit(ctx context.Context, eventType ActivityEventType, actor AuthClaims, id int64, md map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      actorFromClaims(actor),
		UserID:     id,
		Metadata:   md,
		OccurredAt: s.now(),
	}
	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("failed to record activity event", "event", eventType, "error", err)
	}
}

// DecodePersonInput decodes a create payload strictly: unknown keys are
// rejected.
func DecodePersonInput(body []byte) (PersonInput, error) {
	var in PersonInput
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, ValidationError("invalid request body", map[string]any{"body": decodeMessage(err)})
	}
	if dec.More() {
		return in, ValidationError("invalid request body", map[string]any{"body": "unexpected trailing data"})
	}
	return in, nil
}

// DecodePersonPatch decodes an update payload. Keys that are not
// mutable fields are ignored.
func DecodePersonPatch(body []byte) (PersonPatch, error) {
	var patch PersonPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		return patch, ValidationError("invalid request body", map[string]any{"body": decodeMessage(err)})
	}
	return patch, nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "empty body"
	case errors.As(err, &typeErr):
		return typeErr.Field + " has the wrong type"
	default:
		return err.Error()
	}
}
