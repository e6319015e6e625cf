package opslog_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safari_tours/internal/domain"
	"safari_tours/internal/opslog"
)

func TestActivity_CappedNewestFirst(t *testing.T) {
	l := opslog.New()
	for i := 1; i <= 27; i++ {
		l.PushActivity(opslog.Activity{Title: fmt.Sprintf("a%d", i)})
	}

	feed := l.Activity()
	require.Len(t, feed, opslog.ActivityCap)
	for i, a := range feed {
		assert.Equal(t, fmt.Sprintf("a%d", 27-i), a.Title)
	}
	assert.NotEmpty(t, feed[0].ID)
	assert.Equal(t, opslog.ToneInfo, feed[0].Tone)
}

func TestActivity_BelowCap(t *testing.T) {
	l := opslog.New()
	l.PushActivity(opslog.Activity{Title: "first"})
	l.PushActivity(opslog.Activity{Title: "second", Tone: opslog.ToneSuccess})

	feed := l.Activity()
	require.Len(t, feed, 2)
	assert.Equal(t, "second", feed[0].Title)
	assert.Equal(t, opslog.ToneSuccess, feed[0].Tone)
}

func TestAuditMirror_Capped(t *testing.T) {
	l := opslog.New()
	for i := 0; i < 60; i++ {
		l.MirrorAudit(domain.AuditEntry{ID: fmt.Sprint(i)})
	}
	got := l.Audit()
	require.Len(t, got, opslog.AuditCap)
	assert.Equal(t, "59", got[0].ID)
	assert.Equal(t, "10", got[len(got)-1].ID)
}

func TestNotifications_ReadFlags(t *testing.T) {
	l := opslog.New()
	a := l.Notify(opslog.Notification{Title: "New booking BK-1"})
	l.Notify(opslog.Notification{Title: "New booking BK-2"})
	require.Equal(t, 2, l.Unread())

	assert.True(t, l.MarkRead(a.ID))
	assert.False(t, l.MarkRead("nope"))
	assert.Equal(t, 1, l.Unread())

	list := l.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, "New booking BK-2", list[0].Title)
	assert.True(t, list[1].Read)

	l.MarkAllRead()
	assert.Zero(t, l.Unread())
}

func TestLog_ConcurrentPushes(t *testing.T) {
	l := opslog.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.PushActivity(opslog.Activity{Title: "x"})
			l.Notify(opslog.Notification{Title: "y"})
		}()
	}
	wg.Wait()
	assert.Len(t, l.Activity(), opslog.ActivityCap)
	assert.Equal(t, 50, l.Unread())
}
