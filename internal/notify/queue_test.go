package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/httpguard/internal/core/domain"
)

func TestQueue_ShowAssignsMonotonicIDsInDisplayOrder(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	a := q.Show("first", domain.ToastSuccess, 0)
	b := q.Show("second", domain.ToastWarning, 0)
	c := q.Info("third")

	assert.Less(t, a, b)
	assert.Less(t, b, c)

	active := q.Active()
	require.Len(t, active, 3)
	assert.Equal(t, "first", active[0].Message)
	assert.Equal(t, "second", active[1].Message)
	assert.Equal(t, "third", active[2].Message)
	assert.Equal(t, domain.ToastInfo, active[2].Type)
	assert.Equal(t, DefaultDuration, active[2].Duration)
}

func TestQueue_AutoExpiry(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	q.Show("short", domain.ToastInfo, 20*time.Millisecond)
	keep := q.Show("long", domain.ToastInfo, time.Hour)

	assert.Eventually(t, func() bool {
		active := q.Active()
		return len(active) == 1 && active[0].ID == keep
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_ZeroDurationPersistsUntilRemoved(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	id := q.Show("x", domain.ToastInfo, 0)
	time.Sleep(30 * time.Millisecond)
	require.Len(t, q.Active(), 1)

	q.Remove(id)
	assert.Empty(t, q.Active())
}

func TestQueue_RemoveIsIdempotent(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	a := q.Show("a", domain.ToastError, time.Hour)
	b := q.Show("b", domain.ToastError, time.Hour)

	q.Remove(a)
	once := q.Active()
	q.Remove(a)
	q.Remove(999)

	assert.Equal(t, once, q.Active())
	require.Len(t, once, 1)
	assert.Equal(t, b, once[0].ID)
}

func TestQueue_ManualRemoveRacesTimer(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := q.Show("racy", domain.ToastInfo, time.Millisecond)
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Remove(id)
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return len(q.Active()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestQueue_InvalidTypeFallsBackToInfo(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	q.Show("odd", domain.ToastType("fatal"), -time.Second)

	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, domain.ToastInfo, active[0].Type)
	assert.Equal(t, time.Duration(0), active[0].Duration)
}

func TestQueue_Subscribe(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var mu sync.Mutex
	var lengths []int
	unsub := q.Subscribe(func(toasts []domain.Toast) {
		mu.Lock()
		lengths = append(lengths, len(toasts))
		mu.Unlock()
	})

	id := q.Show("a", domain.ToastInfo, 0)
	q.Show("b", domain.ToastInfo, 0)
	q.Remove(id)
	q.Remove(id)
	unsub()
	q.Show("c", domain.ToastInfo, 0)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 1}, lengths)
}

func TestQueue_ActiveReturnsCopy(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	q.Show("a", domain.ToastInfo, 0)
	active := q.Active()
	active[0].Message = "mutated"

	assert.Equal(t, "a", q.Active()[0].Message)
}

func TestQueue_CloseStopsTimers(t *testing.T) {
	q := NewQueue()
	q.Show("a", domain.ToastInfo, 10*time.Millisecond)
	q.Close()

	time.Sleep(40 * time.Millisecond)
	assert.Len(t, q.Active(), 1)
}

func TestQueue_SubscribersSettleOnLatestList(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var mu sync.Mutex
	var last []domain.Toast
	q.Subscribe(func(toasts []domain.Toast) {
		mu.Lock()
		last = toasts
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := q.Show("a", domain.ToastInfo, 0)
			if id%2 == 0 {
				q.Remove(id)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, q.Active(), last)
	assert.Len(t, last, 25)
}
