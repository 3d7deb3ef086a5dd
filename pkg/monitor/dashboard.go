package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

var (
	ErrStreamNotOpen   = errors.New("realtime stream is not open")
	ErrMissingSession  = errors.New("session id is required")
	ErrDashboardClosed = errors.New("dashboard is closed")
)

// Stream is one open realtime connection, scoped to a single call.
type Stream interface {
	// Run reads until the connection ends and reports every event to sink.
	Run(sink StreamSink)
	Send(v any) error
	Close() error
}

// StreamSink receives what a Stream reads, strictly in arrival order.
type StreamSink interface {
	Event(ev Event)
	Closed()
	Failed(err error)
}

// StreamDialer opens the realtime stream of a session.
type StreamDialer interface {
	Dial(ctx context.Context, sessionID string) (Stream, error)
}

type Option func(*Dashboard)

func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		d.now = now
	}
}

// Dashboard owns the state of the one call being monitored. Every mutation
// of the item store, call info and quality goes through mu, and signals from
// a stream that has been superseded by a newer call are dropped.
type Dashboard struct {
	dialer StreamDialer
	now    func() time.Time

	mu         sync.Mutex
	reducer    *Reducer
	store      *ItemStore
	session    *CallSession
	quality    model.CallQuality
	stats      model.CallStats
	generation string
	stream     Stream
	cancel     context.CancelFunc
	closed     bool

	subs    map[int]chan struct{}
	nextSub int
}

func NewDashboard(dialer StreamDialer, opts ...Option) *Dashboard {
	d := &Dashboard{
		dialer:  dialer,
		now:     time.Now,
		store:   NewItemStore(),
		session: NewCallSession(),
		quality: model.DefaultCallQuality(),
		stats:   model.DefaultCallStats(),
		subs:    make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reducer = NewReducer(logx.WithContext(context.Background()), d.now)
	return d
}

// StartCall replaces the monitored call. Any stream of the previous call is
// torn down before the new session's stream is dialed in the background.
func (d *Dashboard) StartCall(meta CallMeta) error {
	if meta.SessionID == "" {
		return ErrMissingSession
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDashboardClosed
	}
	prev, prevCancel := d.detachLocked()

	gen := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	d.generation = gen
	d.cancel = cancel
	d.store.Reset()
	d.session = NewCallSession()
	d.session.Start(meta, d.now())
	d.quality = model.DefaultCallQuality()
	d.stats = ComputeStats(nil)
	d.mu.Unlock()

	teardown(prev, prevCancel)
	logx.Infof("call started: session=%s callSid=%s elder=%s generation=%s",
		meta.SessionID, meta.CallSid, meta.ElderID, gen)
	d.notify()

	threading.GoSafe(func() {
		d.connect(ctx, gen, meta.SessionID)
	})
	return nil
}

func (d *Dashboard) connect(ctx context.Context, gen, sessionID string) {
	stream, err := d.dialer.Dial(ctx, sessionID)

	d.mu.Lock()
	if d.closed || gen != d.generation {
		d.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		logx.Infof("discarding stream of superseded session %s", sessionID)
		return
	}
	if err != nil {
		d.session.Failed(d.now())
		_, cancel := d.detachLocked()
		d.mu.Unlock()
		teardown(nil, cancel)
		logx.Errorf("open realtime stream for session %s: %v", sessionID, err)
		d.notify()
		return
	}
	d.stream = stream
	d.session.Opened()
	d.mu.Unlock()

	logx.Infof("connected to realtime stream for session %s", sessionID)
	d.notify()

	stream.Run(&sessionSink{d: d, generation: gen})
}

// sessionSink forwards one stream's signals, tagged with the call they belong to.
type sessionSink struct {
	d          *Dashboard
	generation string
}

func (s *sessionSink) Event(ev Event) {
	d := s.d
	d.mu.Lock()
	if d.closed || s.generation != d.generation {
		d.mu.Unlock()
		return
	}
	outcome := d.reducer.Apply(d.store, &d.quality, ev)
	if outcome.ItemsChanged {
		d.stats = ComputeStats(d.store.items)
	}
	d.mu.Unlock()

	if outcome.Changed() {
		d.notify()
	}
}

func (s *sessionSink) Closed() {
	s.end(nil)
}

func (s *sessionSink) Failed(err error) {
	s.end(err)
}

func (s *sessionSink) end(err error) {
	d := s.d
	d.mu.Lock()
	if d.closed || s.generation != d.generation {
		d.mu.Unlock()
		return
	}
	var changed bool
	if err != nil {
		changed = d.session.Failed(d.now())
	} else {
		changed = d.session.Closed(d.now())
	}
	stream, cancel := d.detachLocked()
	d.mu.Unlock()

	teardown(stream, cancel)
	if err != nil {
		logx.Errorf("realtime stream failed: %v", err)
	} else {
		logx.Info("realtime stream disconnected")
	}
	if changed {
		d.notify()
	}
}

// UpdateSession forwards a session configuration update to the backend.
// It is only possible while the stream is open.
func (d *Dashboard) UpdateSession(config map[string]any) error {
	d.mu.Lock()
	stream := d.stream
	status := d.session.Status()
	d.mu.Unlock()

	if stream == nil || status != model.CallStatusActive {
		return ErrStreamNotOpen
	}
	return stream.Send(NewSessionUpdate(config))
}

// Snapshot renders the current state, with the transcript filtered by query.
func (d *Dashboard) Snapshot(query string) model.DashboardSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	info := d.session.Info(d.now())
	items := d.store.Snapshot()
	snap := model.DashboardSnapshot{
		Call:      info,
		Stats:     d.stats,
		Items:     Filter(items, query),
		ItemCount: len(Filter(items, "")),
		Query:     query,
	}
	if info.Status == model.CallStatusActive {
		quality := d.quality
		snap.Quality = &quality
	}
	return snap
}

func (d *Dashboard) Status() model.CallStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Status()
}

// Export renders the transcript file of the current call.
func (d *Dashboard) Export() (filename, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	return ExportFilename(d.session.info.ElderID, now), ExportTranscript(d.store.Snapshot())
}

// Subscribe returns a channel that receives a signal after every state change.
// Signals coalesce; a slow subscriber only ever misses intermediate states.
func (d *Dashboard) Subscribe() (<-chan struct{}, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan struct{}, 1)
	if d.closed {
		close(ch)
		return ch, func() {}
	}

	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if c, ok := d.subs[id]; ok {
				delete(d.subs, id)
				close(c)
			}
		})
	}
}

func (d *Dashboard) notify() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ch := range d.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears down the current stream and releases all subscribers.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.generation = ""
	stream, cancel := d.detachLocked()
	for id, ch := range d.subs {
		delete(d.subs, id)
		close(ch)
	}
	d.mu.Unlock()

	teardown(stream, cancel)
}

func (d *Dashboard) detachLocked() (Stream, context.CancelFunc) {
	stream, cancel := d.stream, d.cancel
	d.stream, d.cancel = nil, nil
	return stream, cancel
}

func teardown(stream Stream, cancel context.CancelFunc) {
	if cancel != nil {
		cancel()
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			logx.Errorf("close realtime stream: %v", err)
		}
	}
}
