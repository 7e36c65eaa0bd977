package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingNotifier_ScopedRecorder(t *testing.T) {
	shared := &RecordingNotifier{}
	first := &RecordingNotifier{}
	second := &RecordingNotifier{}

	var wg sync.WaitGroup
	for _, rec := range []*RecordingNotifier{first, second} {
		wg.Add(1)
		go func(rec *RecordingNotifier) {
			defer wg.Done()
			ctx := WithNoticeRecorder(context.Background(), rec)
			for i := 0; i < 10; i++ {
				shared.Notify(ctx, Notice{Kind: NoticeInfo, Title: "t"})
			}
		}(rec)
	}
	wg.Wait()

	assert.Len(t, first.Drain(), 10)
	assert.Len(t, second.Drain(), 10)
	assert.Empty(t, shared.Notices())

	shared.Notify(context.Background(), Notice{Kind: NoticeError, Title: "unscoped"})
	require.Len(t, shared.Notices(), 1)
}

func TestStore_NoticesFollowContextRecorder(t *testing.T) {
	p := &fakeProvider{offering: fullOffering(), restore: premiumInfo}
	s, shared := newReadyStore(t, p)

	rec := &RecordingNotifier{}
	_, err := s.RestorePurchases(WithNoticeRecorder(context.Background(), rec))
	require.NoError(t, err)

	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, NoticeSuccess, rec.Notices()[0].Kind)
	assert.Empty(t, shared.Notices())
}
