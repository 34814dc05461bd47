package entry

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/painel-financeiro/painel/internal/event_bus"
	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/auth"
	"github.com/painel-financeiro/painel/pkg/form"
	"github.com/painel-financeiro/painel/pkg/installment"
	"github.com/painel-financeiro/painel/pkg/money"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownKind  = errors.New("unknown entry kind")
	ErrInvalidDraft = errors.New("draft is invalid")
)

// InvalidDraftError carries the draft state, with every field touched, so the
// validation messages can be shown.
type InvalidDraftError struct {
	State State
}

func (e *InvalidDraftError) Error() string {
	return fmt.Sprintf("%s draft %s is invalid", e.State.Kind, e.State.Id)
}

func (e *InvalidDraftError) Is(target error) bool {
	return target == ErrInvalidDraft
}

type Submission struct {
	Kind     string `json:"kind"`
	RecordId int    `json:"id"`
	Created  bool   `json:"created"`
}

type Service interface {
	Open(ctx context.Context, kind string, recordId int) (State, error)
	Get(ctx context.Context, kind, draftId string) (State, error)
	Change(ctx context.Context, kind, draftId string, changes map[string]any) (State, error)
	Submit(ctx context.Context, kind, draftId string) (Submission, error)
	Cancel(ctx context.Context, kind, draftId string) error
}

type ServiceImpl struct {
	variants map[string]Variant
	sessions *Sessions
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(sessions *Sessions, eventBus *event_bus.EventBus, clock utils.Clock, variants ...Variant) *ServiceImpl {
	byKind := make(map[string]Variant, len(variants))
	for _, v := range variants {
		byKind[v.Kind] = v
	}
	return &ServiceImpl{
		variants: byKind,
		sessions: sessions,
		eventBus: eventBus,
		clock:    clock,
	}
}

func (s *ServiceImpl) variant(kind string) (Variant, error) {
	v, ok := s.variants[kind]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return v, nil
}

// Open starts a new draft, or an edit draft hydrated from the stored record when
// recordId is set.
func (s *ServiceImpl) Open(ctx context.Context, kind string, recordId int) (State, error) {
	session, err := auth.CurrentSession(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to get current session: %w", err)
	}
	v, err := s.variant(kind)
	if err != nil {
		return State{}, err
	}

	editor := NewEditor(v, s.clock)
	if recordId > 0 {
		values, err := v.Store.Load(ctx, recordId)
		if err != nil {
			return State{}, fmt.Errorf("failed to load %s %d: %w", kind, recordId, err)
		}
		editor.Hydrate(values)
	}

	d := s.sessions.add(session.Id, recordId, editor)
	log.Debugf("opened %s draft %s (record %d)", kind, d.id, recordId)
	return stateOf(d), nil
}

func (s *ServiceImpl) Get(ctx context.Context, kind, draftId string) (State, error) {
	d, release, err := s.acquire(ctx, kind, draftId)
	if err != nil {
		return State{}, err
	}
	defer release()
	return stateOf(d), nil
}

// Change applies the edits in form order, so a driver field changed together with
// its dependent is applied first. Each edit is one committed change. The batch is
// all or nothing: when one edit fails the draft is restored to its prior state.
func (s *ServiceImpl) Change(ctx context.Context, kind, draftId string, changes map[string]any) (State, error) {
	d, release, err := s.acquire(ctx, kind, draftId)
	if err != nil {
		return State{}, err
	}
	defer release()

	for name := range changes {
		if !d.editor.form.Has(name) {
			return stateOf(d), fmt.Errorf("%w: %s", form.ErrUnknownField, name)
		}
	}
	snapshot := d.editor.form.Snapshot()
	for _, name := range d.editor.form.Names() {
		value, ok := changes[name]
		if !ok {
			continue
		}
		if err := d.editor.Change(name, value); err != nil {
			d.editor.form.Restore(snapshot)
			return stateOf(d), err
		}
	}
	return stateOf(d), nil
}

// Submit validates the draft, saves it upstream on behalf of the session's user and
// discards it. An invalid draft stays open with every field marked as touched.
func (s *ServiceImpl) Submit(ctx context.Context, kind, draftId string) (Submission, error) {
	session, err := auth.CurrentSession(ctx)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to get current session: %w", err)
	}
	d, release, err := s.acquire(ctx, kind, draftId)
	if err != nil {
		return Submission{}, err
	}
	defer release()

	if !d.editor.Valid() {
		d.editor.MarkAllAsTouched()
		return Submission{}, &InvalidDraftError{State: stateOf(d)}
	}
	if session.UserId == "" {
		return Submission{}, auth.ErrUnauthenticated
	}

	draft := d.editor.Draft()
	draft.RecordId = d.recordId
	draft.UserId = session.UserId

	v := d.editor.Variant()
	id, err := v.Store.Save(ctx, d.recordId, draft)
	if err != nil {
		log.Errorf("failed to save %s draft %s: %v", kind, draftId, err)
		return Submission{}, err
	}

	s.sessions.discard(d.id)
	d.editor.Close()

	created := d.recordId == 0
	s.publishSaved(ctx, draft, id, created)
	return Submission{Kind: kind, RecordId: id, Created: created}, nil
}

func (s *ServiceImpl) Cancel(ctx context.Context, kind, draftId string) error {
	d, release, err := s.acquire(ctx, kind, draftId)
	if err != nil {
		return err
	}
	defer release()
	s.sessions.discard(d.id)
	d.editor.Close()
	return nil
}

func (s *ServiceImpl) acquire(ctx context.Context, kind, draftId string) (*openDraft, func(), error) {
	session, err := auth.CurrentSession(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current session: %w", err)
	}
	if _, err := s.variant(kind); err != nil {
		return nil, nil, err
	}
	d, release, err := s.sessions.acquire(session.Id, kind, draftId)
	if err != nil {
		log.Warnf("%s draft %s not found", kind, draftId)
		return nil, nil, err
	}
	return d, release, nil
}

func (s *ServiceImpl) publishSaved(ctx context.Context, draft Draft, id int, created bool) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.EntrySavedEvent, event_bus.EntrySaved{
		Kind:        draft.Kind,
		Id:          strconv.Itoa(id),
		Created:     created,
		UserId:      draft.UserId,
		Description: draft.Description,
		Total:       money.Format(draft.Total),
		Installment: draft.Installment,
		Count:       draft.Count,
		EndDate:     installment.Calculate(draft.Input()).EndDate,
		SavedAt:     s.clock.Now(),
	}))
	if err != nil {
		log.Errorf("failed to publish %s for %s %d: %v", event_bus.EntrySavedEvent, draft.Kind, id, err)
	}
}

func stateOf(d *openDraft) State {
	s := d.editor.State()
	s.Id = d.id
	s.RecordId = d.recordId
	return s
}
