package events

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/nuntium/internal/common"
	"github.com/ternarybob/nuntium/internal/interfaces"
)

func TestPublishReachesSubscribers(t *testing.T) {
	svc := NewService(common.NewTestLogger())

	var got int32
	err := svc.Subscribe(interfaces.EventReportReady, func(ctx context.Context, e interfaces.Event) error {
		atomic.AddInt32(&got, 1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventReportReady}))
	require.NoError(t, svc.Close(), "close waits for handlers")
	assert.Equal(t, int32(1), atomic.LoadInt32(&got))
}

func TestPublishWithoutSubscribers(t *testing.T) {
	svc := NewService(common.NewTestLogger())
	assert.NoError(t, svc.Publish(context.Background(), interfaces.Event{Type: "unheard"}))
	assert.NoError(t, svc.Close())
}

func TestSubscribeNilHandler(t *testing.T) {
	svc := NewService(common.NewTestLogger())
	assert.Error(t, svc.Subscribe(interfaces.EventReportReady, nil))
}

func TestPublishAfterClose(t *testing.T) {
	svc := NewService(common.NewTestLogger())
	require.NoError(t, svc.Close())

	err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventReportReady})
	assert.Error(t, err)
}
