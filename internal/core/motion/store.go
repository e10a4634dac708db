package motion

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ixugo/goddd/pkg/conc"
)

// cameraState 单个摄像头的选区状态，只由 Store 持有
type cameraState struct {
	mu      sync.Mutex
	frames  SearchFrameSet
	issued  uint64 // 已分配的最大请求版本
	applied uint64 // 已生效的最大请求版本
	subs    map[*Subscription]struct{}
}

// apply 替换当前集合并同步投递给所有订阅者，调用方持有 c.mu
func (c *cameraState) apply(v uint64, set SearchFrameSet) {
	c.frames = set.Clone()
	c.applied = v
	for sub := range c.subs {
		sub.push(set.Clone())
	}
}

// Store 按摄像头划分的区间集合缓存，是唯一的数据源
// 不同摄像头之间互不加锁
type Store struct {
	cameras conc.Map[string, *cameraState]
}

// NewStore 创建选区存储
func NewStore() *Store {
	return &Store{}
}

func (s *Store) camera(cameraID string) *cameraState {
	if c, ok := s.cameras.Load(cameraID); ok {
		return c
	}
	c, _ := s.cameras.LoadOrStore(cameraID, &cameraState{subs: make(map[*Subscription]struct{})})
	return c
}

// Begin 为一次后端查询分配版本号，版本号按调用顺序递增
func (s *Store) Begin(cameraID string) uint64 {
	c := s.camera(cameraID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// CommitVersion 仅当 v 是最近一次分配的版本时才写入，返回是否生效
// 只要有更新的请求已经发起，旧请求的结果就会被丢弃，即使更新的请求尚未返回
func (s *Store) CommitVersion(cameraID string, v uint64, set SearchFrameSet) bool {
	c := s.camera(cameraID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if v != c.issued || v <= c.applied {
		return false
	}
	c.apply(v, set)
	return true
}

// Commit 直接写入新的集合并通知所有订阅者
func (s *Store) Commit(cameraID string, set SearchFrameSet) {
	c := s.camera(cameraID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.apply(c.issued, set)
}

// Clear 重置为空集合并通知，同时使进行中的旧请求失效
func (s *Store) Clear(cameraID string) {
	s.Commit(cameraID, SearchFrameSet{})
}

// Snapshot 返回当前集合的副本，未提交过时返回空集合
func (s *Store) Snapshot(cameraID string) SearchFrameSet {
	c, ok := s.cameras.Load(cameraID)
	if !ok {
		return SearchFrameSet{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames.Clone()
}

// Subscribers 当前订阅者数量
func (s *Store) Subscribers(cameraID string) int {
	c, ok := s.cameras.Load(cameraID)
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Subscribe 订阅摄像头的区间集合
// 第一个值是当前集合，之后按提交顺序收到每一次 Commit/Clear 的结果
func (s *Store) Subscribe(cameraID string) *Subscription {
	sub := &Subscription{
		ID:       uuid.NewString(),
		CameraID: cameraID,
		store:    s,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	c := s.camera(cameraID)
	c.mu.Lock()
	c.subs[sub] = struct{}{}
	sub.push(c.frames.Clone())
	c.mu.Unlock()
	return sub
}

func (s *Store) unsubscribe(sub *Subscription) {
	c, ok := s.cameras.Load(sub.CameraID)
	if !ok {
		return
	}
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
}

// Subscription 单个观察者的有序信箱
// 投递只追加到信箱，不会阻塞提交方，也不会丢失中间值
type Subscription struct {
	ID       string
	CameraID string

	store  *Store
	mu     sync.Mutex
	queue  []SearchFrameSet
	closed bool
	ready  chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) push(set SearchFrameSet) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, set)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// C 有新值时收到通知，配合 TryNext 使用
func (s *Subscription) C() <-chan struct{} {
	return s.ready
}

// Done 订阅关闭后关闭
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// TryNext 非阻塞地取出下一个值
func (s *Subscription) TryNext() (SearchFrameSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	set := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return set, true
}

// Next 阻塞直到有新值、订阅关闭或 ctx 结束
func (s *Subscription) Next(ctx context.Context) (SearchFrameSet, error) {
	for {
		if set, ok := s.TryNext(); ok {
			return set, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.done:
			return nil, ErrUnsubscribed
		case <-s.ready:
		}
	}
}

// Close 取消订阅，之后不会再收到任何值
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.store.unsubscribe(s)
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}
