package paging

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// State is a point-in-time copy of a collection.
type State[T any] struct {
	Items []T
	// Visible is Items narrowed by the post-filter; equal to Items otherwise.
	Visible     []T
	LoadedCount int
	TotalCount  int
	Cursor      string
	Done        bool
	Loading     bool
	// Filter is the latest key typed by the user, AppliedFilter the key the
	// current epoch was loaded with.
	Filter        string
	AppliedFilter string
	Epoch         uint64
	Initialized   bool
	NoResults     bool
}

// Exhausted reports whether no further pages exist for the current epoch.
func (s State[T]) Exhausted() bool {
	return s.Done || (s.TotalCount >= 0 && s.LoadedCount >= s.TotalCount)
}

// Collection materializes a remote collection page by page.
// All methods are safe for concurrent use.
type Collection[T any] struct {
	src       Source[T]
	counter   Counter
	store     Store[T]
	prefix    string
	notifier  Notifier
	identity  func(T) string
	match     func(T, string) bool
	log       Logger
	onFailure func(*Failure)
	mode      Mode
	pageSize  int
	threshold int
	wait      time.Duration

	debounce *Debouncer
	base     context.Context
	stopBase context.CancelFunc

	mu          sync.Mutex
	storeMu     sync.Mutex
	st          State[T]
	busy        bool
	epochCtx    context.Context
	cancelEpoch context.CancelFunc
	closed      bool

	pubMu   sync.Mutex
	subs    map[int]func(State[T])
	nextSub int
}

// New builds a collection over src. The addressing mode and the counter are
// taken from src when it implements Moder or Counter; options override both.
func New[T any](src Source[T], opts ...Option[T]) *Collection[T] {
	base, stop := context.WithCancel(context.Background())
	c := &Collection[T]{
		src:       src,
		log:       NopLogger{},
		pageSize:  DefaultPageSize,
		threshold: DefaultScrollThreshold,
		wait:      DefaultDebounce,
		base:      base,
		stopBase:  stop,
		subs:      make(map[int]func(State[T])),
	}
	if m, ok := src.(Moder); ok {
		c.mode = m.Mode()
	}
	if ctr, ok := src.(Counter); ok {
		c.counter = ctr
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debounce = NewDebouncer(c.wait)
	c.epochCtx, c.cancelEpoch = context.WithCancel(base)
	c.st = State[T]{TotalCount: UnknownTotal}
	return c
}

// Mode returns the addressing mode in use.
func (c *Collection[T]) Mode() Mode { return c.mode }

// PageSize returns the fetch limit.
func (c *Collection[T]) PageSize() int { return c.pageSize }

// State returns a copy of the current state.
func (c *Collection[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive the state after every mutation and
// returns a function that removes it. fn runs on the mutating goroutine; it
// may read State but must not mutate the collection or touch subscriptions.
func (c *Collection[T]) Subscribe(fn func(State[T])) (cancel func()) {
	c.pubMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.pubMu.Unlock()
	return func() {
		c.pubMu.Lock()
		delete(c.subs, id)
		c.pubMu.Unlock()
	}
}

// Initialize starts a new epoch for the applied filter. A cached snapshot
// replaces the first fetch; otherwise the state is reset, the total is
// measured when a Counter is available and the first page is loaded.
func (c *Collection[T]) Initialize(ctx context.Context) {
	epoch, filter, ectx, ok := c.beginEpoch()
	if !ok {
		return
	}
	c.start(ctx, epoch, filter, ectx)
}

// start loads the epoch opened by beginEpoch: restore, measure, first page.
func (c *Collection[T]) start(ctx context.Context, epoch uint64, filter string, ectx context.Context) {
	c.publish()

	if c.restore(ctx, epoch, filter) {
		c.publish()
		return
	}

	if c.counter != nil && !c.measure(ctx, ectx, epoch, filter) {
		return
	}

	c.mu.Lock()
	if c.st.Epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.busy = false
	if c.exhaustedLocked() {
		c.st.Initialized = true
	}
	c.mu.Unlock()
	c.publish()

	c.LoadMore(ctx)
}

// Refresh drops the cached snapshot for the applied filter and reloads.
func (c *Collection[T]) Refresh(ctx context.Context) {
	epoch, filter, ectx, ok := c.beginEpoch()
	if !ok {
		return
	}
	c.forget(ctx, filter)
	c.start(ctx, epoch, filter, ectx)
}

// LoadMore fetches the next page unless a fetch is in flight or the
// collection is exhausted. It reports whether a fetch was issued.
func (c *Collection[T]) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed || c.busy || c.st.Loading || c.exhaustedLocked() {
		c.mu.Unlock()
		return false
	}
	c.st.Loading = true
	epoch := c.st.Epoch
	key := CacheKey(c.prefix, c.st.AppliedFilter)
	page := c.nextPageLocked()
	ectx := c.epochCtx
	c.mu.Unlock()
	c.publish()

	fctx, release := withEpoch(ctx, ectx)
	res, err := c.src.Fetch(fctx, page)
	release()

	c.mu.Lock()
	if c.closed || c.st.Epoch != epoch {
		c.mu.Unlock()
		c.log.Debug("dropping page from superseded epoch", Fields{
			"epoch": epoch,
			"items": len(res.Items),
		})
		return true
	}
	c.st.Loading = false
	if err != nil {
		c.mu.Unlock()
		c.report(&Failure{Kind: FetchFailure, Op: "load", Epoch: epoch, Err: err})
		c.publish()
		return true
	}
	added := c.applyLocked(page, res)
	snap := c.persistedLocked()
	loaded, total := c.st.LoadedCount, c.st.TotalCount
	c.mu.Unlock()

	c.log.Debug("page loaded", Fields{
		"epoch":  epoch,
		"offset": page.Offset,
		"added":  len(added),
		"loaded": loaded,
		"total":  total,
	})
	c.persist(ctx, epoch, key, snap)
	c.notify(added)
	c.publish()
	return true
}

// OnScrollProximity loads the next page when the viewport is within the
// scroll threshold of the bottom. It reports whether a fetch was issued.
func (c *Collection[T]) OnScrollProximity(ctx context.Context, distanceFromBottom int) bool {
	c.mu.Lock()
	ok := !c.closed && !c.busy && ShouldLoad(distanceFromBottom, c.threshold, c.st.Loading, c.exhaustedLocked())
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.LoadMore(ctx)
}

// OnFilterChange records filter immediately and schedules the reload after
// the debounce window; a later call within the window replaces it. With a
// post-filter the visible items are narrowed instead and nothing reloads.
func (c *Collection[T]) OnFilterChange(filter string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.st.Filter = filter
	post := c.match != nil
	c.mu.Unlock()
	c.publish()

	if post {
		return
	}
	c.debounce.Schedule(func() { c.applyFilter(filter) })
}

// FilterPending reports whether a debounced reload is waiting to fire.
func (c *Collection[T]) FilterPending() bool {
	return c.debounce.Pending()
}

// Close cancels the pending reload and the current epoch. Late results are
// dropped and further calls are no-ops.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelEpoch()
	c.mu.Unlock()

	c.debounce.Stop()
	c.stopBase()

	c.pubMu.Lock()
	c.subs = make(map[int]func(State[T]))
	c.pubMu.Unlock()
}

func (c *Collection[T]) applyFilter(filter string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.st.AppliedFilter
	c.st.AppliedFilter = filter
	epoch, ectx := c.beginEpochLocked()
	c.mu.Unlock()

	c.log.Debug("filter applied", Fields{"previous": prev, "filter": filter, "epoch": epoch})
	c.forget(c.base, prev)
	c.start(c.base, epoch, filter, ectx)
}

func (c *Collection[T]) beginEpoch() (uint64, string, context.Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, "", nil, false
	}
	epoch, ectx := c.beginEpochLocked()
	return epoch, c.st.AppliedFilter, ectx, true
}

// beginEpochLocked supersedes the current epoch. In-flight fetches of the old
// epoch are cancelled and their results are dropped when they land.
func (c *Collection[T]) beginEpochLocked() (uint64, context.Context) {
	c.cancelEpoch()
	c.epochCtx, c.cancelEpoch = context.WithCancel(c.base)
	c.st = State[T]{
		Filter:        c.st.Filter,
		AppliedFilter: c.st.AppliedFilter,
		Epoch:         c.st.Epoch + 1,
		TotalCount:    UnknownTotal,
	}
	c.busy = true
	return c.st.Epoch, c.epochCtx
}

func (c *Collection[T]) restore(ctx context.Context, epoch uint64, filter string) bool {
	if c.store == nil {
		return false
	}
	key := CacheKey(c.prefix, filter)
	snap, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.report(&Failure{Kind: CacheFailure, Op: "restore", Key: key, Epoch: epoch, Err: err})
		return false
	}
	if !ok {
		c.log.Debug("cache miss", Fields{"key": key})
		return false
	}
	if err := snap.validate(); err != nil {
		c.report(&Failure{Kind: CacheFailure, Op: "restore", Key: key, Epoch: epoch, Err: err})
		return false
	}

	c.mu.Lock()
	if c.st.Epoch != epoch {
		c.mu.Unlock()
		return true
	}
	c.st.Items = slices.Clone(snap.Items)
	c.st.LoadedCount = len(c.st.Items)
	c.st.TotalCount = snap.TotalCount
	c.st.Cursor = snap.Cursor
	c.st.Done = snap.Done
	c.st.Initialized = true
	c.busy = false
	c.mu.Unlock()

	c.log.Debug("restored from cache", Fields{"key": key, "items": len(snap.Items)})
	return true
}

// measure asks the counter for the total. It returns false when the epoch
// was superseded meanwhile.
func (c *Collection[T]) measure(ctx, ectx context.Context, epoch uint64, filter string) bool {
	cctx, release := withEpoch(ctx, ectx)
	n, err := c.counter.Count(cctx, filter)
	release()

	c.mu.Lock()
	if c.st.Epoch != epoch {
		c.mu.Unlock()
		return false
	}
	if err == nil && n >= 0 {
		c.st.TotalCount = n
	}
	c.mu.Unlock()

	if err != nil {
		c.report(&Failure{Kind: CountFailure, Op: "count", Key: CacheKey(c.prefix, filter), Epoch: epoch, Err: err})
	}
	return true
}

func (c *Collection[T]) nextPageLocked() Page {
	page := Page{Limit: c.pageSize}
	if c.mode == ModeCursor {
		page.Cursor = c.st.Cursor
	} else {
		page.Offset = c.st.LoadedCount
	}
	if c.match == nil {
		page.Filter = c.st.AppliedFilter
	}
	return page
}

// applyLocked merges a fetched page and returns the items actually appended.
func (c *Collection[T]) applyLocked(page Page, res Result[T]) []T {
	if res.Total >= 0 {
		c.st.TotalCount = max(res.Total, len(c.st.Items))
	}
	added := res.Items
	if c.st.TotalCount >= 0 {
		room := max(c.st.TotalCount-len(c.st.Items), 0)
		if len(added) > room {
			added = added[:room]
		}
	}
	c.st.Items = append(c.st.Items, added...)
	c.st.LoadedCount = len(c.st.Items)
	c.st.Cursor = res.NextCursor

	// A source may serve fewer items than asked for. With a known total a
	// short page only ends the collection once the total is reached.
	switch {
	case c.st.TotalCount >= 0 && c.st.LoadedCount >= c.st.TotalCount:
		c.st.Done = true
	case c.mode == ModeCursor && res.NextCursor == "":
		c.st.Done = true
	case len(res.Items) == 0:
		c.st.Done = true
	case c.st.TotalCount < 0 && len(res.Items) < page.Limit:
		c.st.Done = true
	}
	c.st.Initialized = true
	return added
}

func (c *Collection[T]) persistedLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:       slices.Clone(c.st.Items),
		TotalCount:  c.st.TotalCount,
		LoadedCount: c.st.LoadedCount,
		Cursor:      c.st.Cursor,
		Done:        c.st.Done,
	}
}

func (c *Collection[T]) persist(ctx context.Context, epoch uint64, key string, snap Snapshot[T]) {
	if c.store == nil {
		return
	}
	// Writes and deletes are serialized and the epoch is checked under the
	// same lock, so a write from a superseded epoch cannot recreate a key
	// that forget removed.
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	c.mu.Lock()
	stale := c.st.Epoch != epoch
	c.mu.Unlock()
	if stale {
		return
	}
	if err := c.store.Set(ctx, key, snap); err != nil {
		c.report(&Failure{Kind: CacheFailure, Op: "persist", Key: key, Epoch: epoch, Err: err})
	}
}

func (c *Collection[T]) forget(ctx context.Context, filter string) {
	if c.store == nil {
		return
	}
	key := CacheKey(c.prefix, filter)
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if err := c.store.Delete(ctx, key); err != nil {
		c.report(&Failure{Kind: CacheFailure, Op: "delete", Key: key, Err: err})
	}
}

func (c *Collection[T]) notify(added []T) {
	if c.notifier == nil || c.identity == nil || len(added) == 0 {
		return
	}
	ids := make([]string, len(added))
	for i, item := range added {
		ids[i] = c.identity(item)
	}
	c.notifier.ItemsChanged(ids)
}

func (c *Collection[T]) report(f *Failure) {
	fields := Fields{
		"kind":  f.Kind.String(),
		"op":    f.Op,
		"epoch": f.Epoch,
		"error": f.Err.Error(),
	}
	if f.Key != "" {
		fields["key"] = f.Key
	}
	if f.Kind == FetchFailure {
		c.log.Error("paging failure", fields)
	} else {
		c.log.Warn("paging failure", fields)
	}
	if c.onFailure != nil {
		c.onFailure(f)
	}
}

func (c *Collection[T]) publish() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if len(c.subs) == 0 {
		return
	}
	s := c.State()
	for _, fn := range c.subs {
		fn(s)
	}
}

func (c *Collection[T]) exhaustedLocked() bool {
	return c.st.Exhausted()
}

func (c *Collection[T]) snapshotLocked() State[T] {
	s := c.st
	s.Items = slices.Clone(c.st.Items)
	s.Visible = s.Items
	filterActive := s.AppliedFilter != ""
	if c.match != nil {
		filterActive = s.Filter != ""
		if filterActive {
			s.Visible = make([]T, 0, len(s.Items))
			for _, item := range s.Items {
				if c.match(item, s.Filter) {
					s.Visible = append(s.Visible, item)
				}
			}
		}
	}
	s.NoResults = len(s.Visible) == 0 && !s.Loading && (filterActive || s.Initialized)
	return s
}

func (s Snapshot[T]) validate() error {
	switch {
	case s.LoadedCount != len(s.Items):
		return fmt.Errorf("snapshot loaded count %d does not match %d items", s.LoadedCount, len(s.Items))
	case s.TotalCount < UnknownTotal:
		return fmt.Errorf("snapshot total %d is invalid", s.TotalCount)
	case s.TotalCount >= 0 && len(s.Items) > s.TotalCount:
		return fmt.Errorf("snapshot holds %d items but total is %d", len(s.Items), s.TotalCount)
	}
	return nil
}

// withEpoch derives a context that is cancelled with either parent.
func withEpoch(ctx, epoch context.Context) (context.Context, context.CancelFunc) {
	fctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(epoch, cancel)
	return fctx, func() {
		stop()
		cancel()
	}
}
