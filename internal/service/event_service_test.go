package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteMonitorAPI/internal/apperrors"
	"SiteMonitorAPI/internal/models"
)

func newEventService(repo *fakeEventRepo) *EventService {
	return NewEventService(repo, nil, nil, newTestLogger())
}

func TestCreateCustomEvent_Defaults(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo)

	event, err := svc.CreateCustomEvent(context.Background(), CustomEventInput{
		Title: "Planned maintenance window overran",
	})

	require.NoError(t, err)
	assert.Equal(t, models.EventCustom, event.EventType)
	assert.Equal(t, models.SeverityMedium, event.Severity)
	assert.Equal(t, models.EventActive, event.Status)
	assert.NotZero(t, event.ID)
}

func TestCreateCustomEvent_Validation(t *testing.T) {
	svc := newEventService(newFakeEventRepo())

	tests := []struct {
		name  string
		input CustomEventInput
		field string
	}{
		{
			name:  "missing title",
			input: CustomEventInput{},
			field: "title",
		},
		{
			name:  "unknown event type",
			input: CustomEventInput{Title: "x", EventType: "volcano"},
			field: "event_type",
		},
		{
			name:  "unknown severity",
			input: CustomEventInput{Title: "x", Severity: "catastrophic"},
			field: "severity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomEvent(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestAcknowledge_RequiresActor(t *testing.T) {
	svc := newEventService(newFakeEventRepo())

	_, err := svc.Acknowledge(context.Background(), 1, "", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAcknowledge_StampsActorAndNote(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo)

	created, err := svc.CreateCustomEvent(context.Background(), CustomEventInput{Title: "Relay flapping"})
	require.NoError(t, err)

	note := "looking into it"
	event, err := svc.Acknowledge(context.Background(), created.ID, "kinyua", &note)

	require.NoError(t, err)
	assert.Equal(t, models.EventAcknowledged, event.Status)
	require.NotNil(t, event.AcknowledgedBy)
	assert.Equal(t, "kinyua", *event.AcknowledgedBy)
	require.NotNil(t, event.AcknowledgedNote)
	assert.Equal(t, note, *event.AcknowledgedNote)
	assert.NotNil(t, event.AcknowledgedAt)
}

func TestResolve_ManualIsNotAutoResolved(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo)

	created, err := svc.CreateCustomEvent(context.Background(), CustomEventInput{Title: "Relay flapping"})
	require.NoError(t, err)

	event, err := svc.Resolve(context.Background(), created.ID, "kinyua", nil, false)

	require.NoError(t, err)
	assert.Equal(t, models.EventResolved, event.Status)
	assert.False(t, event.AutoResolved)
	require.NotNil(t, event.ResolvedBy)
	assert.Equal(t, "kinyua", *event.ResolvedBy)
}

func TestIgnore_ActiveEventBecomesIgnored(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo)

	created, err := svc.CreateCustomEvent(context.Background(), CustomEventInput{Title: "Known flaky uplink"})
	require.NoError(t, err)

	event, err := svc.Ignore(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, models.EventIgnored, event.Status)
	assert.Nil(t, event.ResolvedAt, "ignoring is not resolving")
}

func TestIgnore_NonActiveEventRejected(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newEventService(repo)

	created, err := svc.CreateCustomEvent(context.Background(), CustomEventInput{Title: "Relay flapping"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), created.ID, "kinyua", nil, false)
	require.NoError(t, err)

	_, err = svc.Ignore(context.Background(), created.ID)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "only active events can be ignored")
}

func TestResolve_UnknownEventPropagatesNotFound(t *testing.T) {
	svc := newEventService(newFakeEventRepo())

	_, err := svc.Resolve(context.Background(), 404, "kinyua", nil, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
