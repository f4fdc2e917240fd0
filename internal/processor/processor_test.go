package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aliskhannn/medreminder/internal/mocks/processor"
	"github.com/aliskhannn/medreminder/internal/model"
	"github.com/aliskhannn/medreminder/internal/push"
	"github.com/aliskhannn/medreminder/internal/queue"
	"github.com/aliskhannn/medreminder/internal/repository/reminder"
)

var strategy = retry.Strategy{Attempts: 1, Delay: time.Millisecond}

type deps struct {
	queue    *mocks.MockdeliveryQueue
	service  *mocks.MockreminderService
	registry *mocks.MockconnectionRegistry
	pusher   *mocks.Mockpusher
	markers  *mocks.MockdeliveryMarkers
	outcomes *mocks.MockoutcomeRecorder
}

func setup(t *testing.T) (*Processor, deps) {
	ctrl := gomock.NewController(t)
	d := deps{
		queue:    mocks.NewMockdeliveryQueue(ctrl),
		service:  mocks.NewMockreminderService(ctrl),
		registry: mocks.NewMockconnectionRegistry(ctrl),
		pusher:   mocks.NewMockpusher(ctrl),
		markers:  mocks.NewMockdeliveryMarkers(ctrl),
		outcomes: mocks.NewMockoutcomeRecorder(ctrl),
	}

	p := New(Deps{
		Queue:     d.queue,
		Reminders: d.service,
		Registry:  d.registry,
		Pusher:    d.pusher,
		Markers:   d.markers,
		Outcomes:  d.outcomes,
	}, strategy, 4)

	return p, d
}

func delivery() queue.Delivery {
	return queue.Delivery{
		Intent: model.Intent{
			ID:         uuid.New(),
			ReminderID: uuid.New(),
			UserID:     uuid.New(),
			Payload:    model.Payload{Title: "Medication reminder"},
		},
		Receipt:      uuid.NewString(),
		ReceiveCount: 1,
	}
}

type outcomeStatus model.DeliveryStatus

func (s outcomeStatus) Matches(x interface{}) bool {
	o, ok := x.(model.DeliveryOutcome)
	return ok && o.Status == model.DeliveryStatus(s)
}

func (s outcomeStatus) String() string {
	return "outcome with status " + string(s)
}

func expectOutcome(d deps, status model.DeliveryStatus) {
	d.outcomes.EXPECT().RecordOutcome(gomock.Any(), outcomeStatus(status)).Return(nil)
}

func TestHandle_InactiveReminderIsSkipped(t *testing.T) {
	for _, status := range []model.ReminderStatus{model.StatusCancelled, model.StatusAcknowledged} {
		t.Run(string(status), func(t *testing.T) {
			p, d := setup(t)
			dl := delivery()

			d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, dl.Intent.ReminderID).Return(status, nil)
			d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(nil)
			expectOutcome(d, model.DeliverySkipped)

			out := p.Handle(context.Background(), dl)
			assert.Equal(t, ResultSkipped, out.Result)
			assert.NoError(t, out.Err)
		})
	}
}

func TestHandle_NoConnectionsAcksWithoutPush(t *testing.T) {
	p, d := setup(t)
	dl := delivery()

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), dl.Intent.UserID).Return(nil, nil)
	d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(nil)
	expectOutcome(d, model.DeliveryNoTarget)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultNoTarget, out.Result)
}

func TestHandle_DeliversToEveryConnection(t *testing.T) {
	p, d := setup(t)
	dl := delivery()
	conns := []model.Connection{{ConnectionID: "a"}, {ConnectionID: "b"}}

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), dl.Intent.UserID).Return(conns, nil)
	for _, c := range conns {
		d.markers.EXPECT().Seen(gomock.Any(), dl.Intent.ID, c.ConnectionID).Return(false, nil)
		d.pusher.EXPECT().Push(gomock.Any(), c, dl.Intent.Payload).Return(nil)
		d.markers.EXPECT().Mark(gomock.Any(), dl.Intent.ID, c.ConnectionID).Return(nil)
	}
	d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(nil)
	expectOutcome(d, model.DeliveryDelivered)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultDelivered, out.Result)
}

func TestHandle_AlreadyDeliveredConnectionIsNotPushedAgain(t *testing.T) {
	p, d := setup(t)
	dl := delivery()
	conn := model.Connection{ConnectionID: "a"}

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), gomock.Any()).Return([]model.Connection{conn}, nil)
	d.markers.EXPECT().Seen(gomock.Any(), dl.Intent.ID, "a").Return(true, nil)
	d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(nil)
	expectOutcome(d, model.DeliveryDelivered)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultDelivered, out.Result)
}

func TestHandle_GoneConnectionIsRemovedAndAckedAsNoTarget(t *testing.T) {
	p, d := setup(t)
	dl := delivery()
	conn := model.Connection{ConnectionID: "a"}

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), gomock.Any()).Return([]model.Connection{conn}, nil)
	d.markers.EXPECT().Seen(gomock.Any(), gomock.Any(), "a").Return(false, nil)
	d.pusher.EXPECT().Push(gomock.Any(), conn, gomock.Any()).Return(push.ErrGone)
	d.registry.EXPECT().RemoveConnection(gomock.Any(), "a").Return(nil)
	d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(nil)
	expectOutcome(d, model.DeliveryNoTarget)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultNoTarget, out.Result)
}

func TestHandle_PartialSuccessAcks(t *testing.T) {
	p, d := setup(t)
	dl := delivery()
	gone, live := model.Connection{ConnectionID: "gone"}, model.Connection{ConnectionID: "live"}

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), gomock.Any()).Return([]model.Connection{gone, live}, nil)
	d.markers.EXPECT().Seen(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	d.pusher.EXPECT().Push(gomock.Any(), gone, gomock.Any()).Return(push.ErrGone)
	d.registry.EXPECT().RemoveConnection(gomock.Any(), "gone").Return(nil)
	d.pusher.EXPECT().Push(gomock.Any(), live, gomock.Any()).Return(nil)
	d.markers.EXPECT().Mark(gomock.Any(), gomock.Any(), "live").Return(nil)
	d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(nil)
	expectOutcome(d, model.DeliveryDelivered)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultDelivered, out.Result)
}

func TestHandle_TransientFailureReleases(t *testing.T) {
	p, d := setup(t)
	dl := delivery()
	conn := model.Connection{ConnectionID: "a"}

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), gomock.Any()).Return([]model.Connection{conn}, nil)
	d.markers.EXPECT().Seen(gomock.Any(), gomock.Any(), "a").Return(false, nil)
	d.pusher.EXPECT().Push(gomock.Any(), conn, gomock.Any()).Return(fmt.Errorf("%w: timeout", push.ErrTransient))
	d.queue.EXPECT().Release(gomock.Any(), dl).Return(false, nil)
	expectOutcome(d, model.DeliveryPending)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultRetry, out.Result)
}

func TestHandle_TransientFailureOnLastAttemptDeadLetters(t *testing.T) {
	p, d := setup(t)
	dl := delivery()
	dl.ReceiveCount = 3

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), gomock.Any()).Return([]model.Connection{{ConnectionID: "a"}}, nil)
	d.markers.EXPECT().Seen(gomock.Any(), gomock.Any(), "a").Return(false, nil)
	d.pusher.EXPECT().Push(gomock.Any(), gomock.Any(), gomock.Any()).Return(push.ErrTransient)
	d.queue.EXPECT().Release(gomock.Any(), dl).Return(true, nil)
	expectOutcome(d, model.DeliveryDeadLettered)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultDeadLettered, out.Result)
}

func TestHandle_MissingReminderIsDeadLettered(t *testing.T) {
	p, d := setup(t)
	dl := delivery()

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.ReminderStatus(""), reminder.ErrReminderNotFound)
	d.queue.EXPECT().DeadLetter(gomock.Any(), dl, "reminder not found").Return(nil)
	expectOutcome(d, model.DeliveryDeadLettered)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultDeadLettered, out.Result)
}

func TestHandle_StoreErrorReleases(t *testing.T) {
	p, d := setup(t)
	dl := delivery()

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusDispatched, nil)
	d.registry.EXPECT().ListConnectionsForUser(gomock.Any(), gomock.Any()).Return(nil, errors.New("db timeout"))
	d.queue.EXPECT().Release(gomock.Any(), dl).Return(false, nil)
	expectOutcome(d, model.DeliveryPending)

	out := p.Handle(context.Background(), dl)
	assert.Equal(t, ResultRetry, out.Result)
}

func TestHandle_AckFailureIsReported(t *testing.T) {
	p, d := setup(t)
	dl := delivery()

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, gomock.Any()).Return(model.StatusCancelled, nil)
	d.queue.EXPECT().Acknowledge(gomock.Any(), dl).Return(queue.ErrUnknownReceipt)

	out := p.Handle(context.Background(), dl)
	assert.ErrorIs(t, out.Err, queue.ErrUnknownReceipt)
}

func TestHandleBatch_ItemsAreIndependent(t *testing.T) {
	p, d := setup(t)
	ok, failing := delivery(), delivery()

	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, ok.Intent.ReminderID).Return(model.StatusCancelled, nil)
	d.service.EXPECT().GetReminderStatus(gomock.Any(), strategy, failing.Intent.ReminderID).Return(model.ReminderStatus(""), errors.New("boom"))
	d.queue.EXPECT().Acknowledge(gomock.Any(), ok).Return(nil)
	d.queue.EXPECT().Release(gomock.Any(), failing).Return(false, errors.New("channel closed"))
	d.outcomes.EXPECT().RecordOutcome(gomock.Any(), gomock.Any()).Return(nil)

	outs := p.HandleBatch(context.Background(), []queue.Delivery{ok, failing})
	require.Len(t, outs, 2)
	assert.Equal(t, ok.Intent.ID, outs[0].IntentID)
	assert.Equal(t, ResultSkipped, outs[0].Result)
	assert.NoError(t, outs[0].Err)
	assert.Error(t, outs[1].Err)
}
