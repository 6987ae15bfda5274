package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/audit"
	"custodian/internal/platform/kafka/consumer"
	"custodian/internal/platform/kafka/producer"
)

type recordingProducer struct {
	mu   sync.Mutex
	msgs []*producer.Message
	err  error
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	return p.ProduceAsync(msg)
}

func (p *recordingProducer) ProduceAsync(msg *producer.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func (p *recordingProducer) messages() []*producer.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*producer.Message(nil), p.msgs...)
}

func TestHookRelayFeedsLogger(t *testing.T) {
	ctx := context.Background()
	l := audit.New()
	require.NoError(t, l.Init(ctx))
	bus := audit.NewLocalBus()
	l.AttachHooks(bus)
	r := NewHookRelay(bus, nil)

	sent := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	body, err := json.Marshal(audit.HookEvent{
		Name:    "permission:grant",
		Actor:   "admin",
		Payload: map[string]any{"scope": "files", "token": "abc"},
	})
	require.NoError(t, err)

	require.NoError(t, r.Handle(ctx, &consumer.Message{Topic: "hooks", Value: body, Timestamp: sent}))

	res, err := l.Query(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, audit.CategoryPermission, e.Category)
	assert.Equal(t, "permission:grant", e.Operation)
	assert.Equal(t, "admin", e.Actor)
	assert.Equal(t, sent, e.Timestamp, "broker timestamp fills a missing event time")
	assert.Equal(t, audit.RedactedMarker, e.Details["token"])
}

func TestHookRelayCommitsMalformedMessages(t *testing.T) {
	ctx := context.Background()
	bus := audit.NewLocalBus()
	var got []audit.HookEvent
	bus.Subscribe(func(_ context.Context, ev audit.HookEvent) { got = append(got, ev) })
	r := NewHookRelay(bus, nil)

	assert.NoError(t, r.Handle(ctx, &consumer.Message{Value: []byte("{not json")}))
	assert.NoError(t, r.Handle(ctx, &consumer.Message{Value: []byte(`{"actor":"x"}`)}))
	assert.Empty(t, got)
}

func TestAlertForwarderPublishesHighRiskOnly(t *testing.T) {
	ctx := context.Background()
	l := audit.New()
	require.NoError(t, l.Init(ctx))

	p := &recordingProducer{}
	f, err := NewAlertForwarder(p, "alerts", nil)
	require.NoError(t, err)
	f.Attach(l)

	_, err = l.Log(ctx, audit.CategoryAPI, "list_items", nil)
	require.NoError(t, err)
	res, err := l.Log(ctx, audit.CategoryDataStore, "drop_table", map[string]any{"table": "contacts"}, audit.Actor("ops"))
	require.NoError(t, err)
	require.True(t, res.Risk.AtLeastHigh())

	msgs := p.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alerts", msgs[0].Topic)
	assert.Equal(t, []byte("ops"), msgs[0].Key)
	assert.Equal(t, string(res.Risk), msgs[0].Headers["risk_level"])

	var alert Alert
	require.NoError(t, json.Unmarshal(msgs[0].Value, &alert))
	assert.Equal(t, res.ID, alert.ID)
	assert.Equal(t, "drop_table", alert.Operation)

	f.Detach()
	_, err = l.Log(ctx, audit.CategoryDataStore, "drop_table", nil)
	require.NoError(t, err)
	assert.Len(t, p.messages(), 1)
}

func TestAlertForwarderSurvivesProducerErrors(t *testing.T) {
	ctx := context.Background()
	l := audit.New()
	require.NoError(t, l.Init(ctx))

	p := &recordingProducer{err: errors.New("producer is closed")}
	f, err := NewAlertForwarder(p, "alerts", nil)
	require.NoError(t, err)
	f.Attach(l)

	_, err = l.Log(ctx, audit.CategoryDataStore, "truncate", nil)
	assert.NoError(t, err)
}

func TestNewAlertForwarderValidates(t *testing.T) {
	_, err := NewAlertForwarder(nil, "alerts", nil)
	assert.Error(t, err)
	_, err = NewAlertForwarder(producer.NoopProducer{}, "", nil)
	assert.Error(t, err)
}
