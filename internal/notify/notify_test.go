package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"gruby/internal/models"
	"gruby/internal/push"
	"gruby/internal/repository"
)

type memoryStore struct {
	created []*models.Notification
	marked  []models.Notification
}

func (m *memoryStore) Create(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.Status = models.NotificationPending
	m.created = append(m.created, n)
	return nil
}

func (m *memoryStore) MarkResult(_ context.Context, n *models.Notification) error {
	m.marked = append(m.marked, *n)
	return nil
}

func (m *memoryStore) List(_ context.Context, page repository.Page) (*repository.PageResult[models.Notification], error) {
	items := make([]models.Notification, 0, len(m.created))
	for _, n := range m.created {
		items = append(items, *n)
	}
	return &repository.PageResult[models.Notification]{Items: items, Total: int64(len(items)), Page: 1, PageSize: 20, TotalPages: 1}, nil
}

type staticAudience struct {
	tokens   []string
	err      error
	audience string
	userIDs  []string
}

func (a *staticAudience) PushTokens(_ context.Context, audience string, userIDs []string) ([]string, error) {
	a.audience, a.userIDs = audience, userIDs
	return a.tokens, a.err
}

type fakeSender struct {
	result push.Result
	err    error
	msg    push.Message
	tokens []string
}

func (f *fakeSender) Send(_ context.Context, tokens []string, msg push.Message) (push.Result, error) {
	f.tokens, f.msg = tokens, msg
	return f.result, f.err
}

func TestSendDeliversAndRecords(t *testing.T) {
	store := &memoryStore{}
	audience := &staticAudience{tokens: []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}}
	sender := &fakeSender{result: push.Result{Delivered: 2}}
	c := NewComposer(store, audience, sender, zap.NewNop())

	n, err := c.Send(context.Background(), Draft{
		Title:     "New gathering",
		Body:      "Pierogi night on Friday",
		Audience:  models.AudienceHomeCooks,
		Data:      map[string]interface{}{"url": "gruby://gathering/1"},
		CreatedBy: "admin-7",
	})
	require.NoError(t, err)

	assert.Equal(t, models.NotificationSent, n.Status)
	assert.NotEmpty(t, n.BatchID)
	assert.Equal(t, 2, n.Recipients)
	assert.Equal(t, 2, n.Delivered)
	assert.Equal(t, "admin-7", n.CreatedBy)
	assert.Equal(t, models.AudienceHomeCooks, audience.audience)
	assert.Equal(t, "Pierogi night on Friday", sender.msg.Body)
	assert.Equal(t, "gruby://gathering/1", sender.msg.Data["url"])

	require.Len(t, store.marked, 1)
	assert.Equal(t, models.NotificationSent, store.marked[0].Status)
}

func TestSendPartialFailureKeepsError(t *testing.T) {
	store := &memoryStore{}
	sender := &fakeSender{result: push.Result{Delivered: 1, Failed: 100}, err: errors.New("push service returned status 502")}
	c := NewComposer(store, &staticAudience{tokens: []string{"ExponentPushToken[a]"}}, sender, zap.NewNop())

	n, err := c.Send(context.Background(), Draft{Title: "t", Body: "b", Audience: models.AudienceAll})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, n.Status)
	assert.Equal(t, 100, n.Failed)
	assert.Contains(t, n.Error, "502")
}

func TestSendAllFailed(t *testing.T) {
	store := &memoryStore{}
	sender := &fakeSender{result: push.Result{Failed: 1}}
	c := NewComposer(store, &staticAudience{tokens: []string{"ExponentPushToken[a]"}}, sender, zap.NewNop())

	n, err := c.Send(context.Background(), Draft{Title: "t", Body: "b", Audience: models.AudienceAll})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, n.Status)
	assert.NotEmpty(t, n.Error)
}

func TestSendWithoutRecipients(t *testing.T) {
	store := &memoryStore{}
	sender := &fakeSender{}
	c := NewComposer(store, &staticAudience{}, sender, zap.NewNop())

	n, err := c.Send(context.Background(), Draft{Title: "t", Body: "b", Audience: models.AudienceAll})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, n.Status)
	assert.Equal(t, "no recipients with push tokens", n.Error)
	assert.Nil(t, sender.tokens)
	require.Len(t, store.marked, 1)
}

func TestSendValidatesDraft(t *testing.T) {
	store := &memoryStore{}
	c := NewComposer(store, &staticAudience{}, &fakeSender{}, zap.NewNop())

	cases := []Draft{
		{Title: "", Body: "b", Audience: models.AudienceAll},
		{Title: "t", Body: "b", Audience: "martians"},
		{Title: "t", Body: "b", Audience: models.AudienceUsers},
	}
	for _, d := range cases {
		_, err := c.Send(context.Background(), d)
		assert.ErrorIs(t, err, ErrInvalidDraft)
	}
	assert.Empty(t, store.created)
}

func TestSendAudienceError(t *testing.T) {
	store := &memoryStore{}
	c := NewComposer(store, &staticAudience{err: repository.ErrInvalidID}, &fakeSender{}, zap.NewNop())

	_, err := c.Send(context.Background(), Draft{Title: "t", Body: "b", Audience: models.AudienceUsers, UserIDs: []string{"x"}})
	assert.ErrorIs(t, err, repository.ErrInvalidID)
	assert.Empty(t, store.created)
}

func TestList(t *testing.T) {
	store := &memoryStore{}
	c := NewComposer(store, &staticAudience{}, &fakeSender{}, zap.NewNop())
	_, err := c.Send(context.Background(), Draft{Title: "t", Body: "b", Audience: models.AudienceAll})
	require.NoError(t, err)

	page, err := c.List(context.Background(), repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
