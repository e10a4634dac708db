package motion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fetchResult struct {
	indices []int
	err     error
}

// fakeTransport 按摄像头返回预设结果；pending 非空时每次调用通过它交出自己的应答通道
type fakeTransport struct {
	mu      sync.Mutex
	indices map[string][]int
	heatmap HeatmapGrid
	err     error
	calls   []Region
	spans   []int

	pending chan chan fetchResult
}

func (f *fakeTransport) FetchSampleIndices(ctx context.Context, cameraID string, region Region, spanSize int) ([]int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, region)
	f.spans = append(f.spans, spanSize)
	pending := f.pending
	indices, err := f.indices[cameraID], f.err
	f.mu.Unlock()

	if pending != nil {
		reply := make(chan fetchResult)
		pending <- reply
		select {
		case r := <-reply:
			return r.indices, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return indices, err
}

func (f *fakeTransport) FetchHeatmap(_ context.Context, _ string) (HeatmapGrid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heatmap, f.err
}

var wholeRegion = Region{Width: 1, Height: 1}

func TestCoreSelect(t *testing.T) {
	tr := fakeTransport{indices: map[string][]int{"cam": {1, 2, 3, 7, 8, 10}}}
	core := NewCore(&tr, Config{SpanSize: 30})

	sub := core.Subscribe("cam")
	defer sub.Close()
	next(t, sub)

	frames, err := core.Select(context.Background(), "cam", wholeRegion)
	if err != nil {
		t.Fatal(err)
	}
	want := SearchFrameSet{{1, 3}, {7, 8}, {10, 10}}
	if diff := cmp.Diff(want, frames); diff != "" {
		t.Errorf("Select mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, next(t, sub)); diff != "" {
		t.Errorf("subscriber mismatch (-want +got):\n%s", diff)
	}
	if tr.spans[0] != 30 {
		t.Errorf("span size = %d", tr.spans[0])
	}

	core.Unselect("cam")
	if got := next(t, sub); len(got) != 0 {
		t.Errorf("after unselect got %v", got)
	}
	if len(tr.calls) != 1 {
		t.Errorf("unselect contacted the backend: %d calls", len(tr.calls))
	}
}

func TestCoreSelectSortsUnorderedIndices(t *testing.T) {
	tr := fakeTransport{indices: map[string][]int{"cam": {8, 1, 7, 2}}}
	core := NewCore(&tr, Config{SpanSize: 30})
	frames, err := core.Select(context.Background(), "cam", wholeRegion)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(SearchFrameSet{{1, 2}, {7, 8}}, frames); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCoreSelectInvalidRegion(t *testing.T) {
	var tr fakeTransport
	core := NewCore(&tr, Config{SpanSize: 30})
	_, err := core.Select(context.Background(), "cam", Region{Position: Point{X: 0.8}, Width: 0.5, Height: 0.1})
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v", err)
	}
	if len(tr.calls) != 0 {
		t.Error("invalid region reached the backend")
	}
}

func TestCoreSelectTransportError(t *testing.T) {
	tr := fakeTransport{err: errors.New("connection refused")}
	core := NewCore(&tr, Config{SpanSize: 30})
	core.Store().Commit("cam", SearchFrameSet{{4, 4}})

	if _, err := core.Select(context.Background(), "cam", wholeRegion); !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if diff := cmp.Diff(SearchFrameSet{{4, 4}}, core.Frames("cam")); diff != "" {
		t.Errorf("failed query changed the store (-want +got):\n%s", diff)
	}
}

func TestCoreSelectMalformedResponse(t *testing.T) {
	tr := fakeTransport{indices: map[string][]int{"cam": {3, -2}}}
	core := NewCore(&tr, Config{SpanSize: 30})
	if _, err := core.Select(context.Background(), "cam", wholeRegion); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
	if got := core.Frames("cam"); len(got) != 0 {
		t.Errorf("frames = %v", got)
	}
}

func TestCoreLatestSelectionWins(t *testing.T) {
	tr := fakeTransport{pending: make(chan chan fetchResult)}
	core := NewCore(&tr, Config{SpanSize: 30})
	ctx := context.Background()

	type outcome struct {
		frames SearchFrameSet
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		f, err := core.Select(ctx, "cam", wholeRegion)
		first <- outcome{f, err}
	}()
	firstReply := <-tr.pending

	second := make(chan outcome, 1)
	go func() {
		f, err := core.Select(ctx, "cam", Region{Width: 0.5, Height: 0.5})
		second <- outcome{f, err}
	}()
	secondReply := <-tr.pending

	secondReply <- fetchResult{indices: []int{20, 21}}
	got := <-second
	if got.err != nil {
		t.Fatal(got.err)
	}

	firstReply <- fetchResult{indices: []int{1, 2}}
	select {
	case got = <-first:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	if !errors.Is(got.err, ErrSuperseded) {
		t.Fatalf("stale result err = %v, want ErrSuperseded", got.err)
	}
	if diff := cmp.Diff(SearchFrameSet{{20, 21}}, core.Frames("cam")); diff != "" {
		t.Errorf("stale result overwrote newer one (-want +got):\n%s", diff)
	}
}

func TestCoreHeatmap(t *testing.T) {
	tr := fakeTransport{heatmap: HeatmapGrid{0, 1500, 3000, 500}}
	core := NewCore(&tr, Config{SpanSize: 30, HeatmapColumns: 2})
	view, err := core.Heatmap(context.Background(), "cam")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0, 1, 1, 500.0 / 1000 / 1.5}, view.Opacity); diff != "" {
		t.Errorf("opacity mismatch (-want +got):\n%s", diff)
	}
	if view.Max != 3000 || view.Mean != 1250 || view.Columns != 2 || view.Cap != DefaultHeatmapCap {
		t.Errorf("view = %+v", view)
	}

	tr.heatmap = nil
	view, err = core.Heatmap(context.Background(), "cam")
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Cells) != 0 || view.Max != 0 {
		t.Errorf("empty view = %+v", view)
	}

	tr.err = errors.New("boom")
	if _, err := core.Heatmap(context.Background(), "cam"); !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v", err)
	}
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type cameraNames map[string]string

func (c cameraNames) CameraName(id string) string { return c[id] }

func TestCoreTimeline(t *testing.T) {
	now := time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC)
	core := NewCore(&fakeTransport{}, Config{SpanSize: 30},
		WithClock(fixedClock(now)),
		WithCameraDirectory(cameraNames{"cam": "front door"}),
	)
	core.Store().Commit("cam", SearchFrameSet{{0, 11}, {60, 119}})

	view := core.Timeline("cam")
	if view.ScopeEnd != 120 || view.CameraName != "front door" {
		t.Fatalf("view = %+v", view)
	}
	want := []TimelineBar{
		{Start: 0, End: 11, StartSecond: 0, EndSecond: 360, Left: 0, Width: 0.1},
		{Start: 60, End: 119, StartSecond: 1800, EndSecond: 3600, Left: 0.5, Width: 0.5},
	}
	if diff := cmp.Diff(want, view.Bars); diff != "" {
		t.Errorf("bars mismatch (-want +got):\n%s", diff)
	}
}

func TestCoreSpanSizeFallback(t *testing.T) {
	core := NewCore(&fakeTransport{}, Config{SpanSize: 0})
	if core.SpanSize() != DefaultSpanSize {
		t.Errorf("span size = %d", core.SpanSize())
	}
}

func TestCorePointerFlow(t *testing.T) {
	tr := fakeTransport{indices: map[string][]int{"cam": {4, 5, 9}}}
	core := NewCore(&tr, Config{SpanSize: 30})
	ctx := context.Background()
	vp := &Viewport{Width: 200, Height: 100}

	res, err := core.Pointer(ctx, "cam", PointerEvent{Kind: PointerMouseDown, X: 20, Y: 10, Viewport: vp})
	if err != nil {
		t.Fatal(err)
	}
	if res.State != "drawing" || res.Committed {
		t.Fatalf("mousedown result = %+v", res)
	}

	if _, err := core.Pointer(ctx, "cam", PointerEvent{Kind: PointerResizing, Width: 40, Height: 40}); err != nil {
		t.Fatal(err)
	}
	if len(tr.calls) != 0 {
		t.Fatal("intermediate resize queried the backend")
	}

	res, err = core.Pointer(ctx, "cam", PointerEvent{Kind: PointerResizeEnd, Width: 100, Height: 50})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Committed || res.State != "active" {
		t.Fatalf("resize end result = %+v", res)
	}
	if diff := cmp.Diff(SearchFrameSet{{4, 5}, {9, 9}}, res.Frames); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Region{Position: Point{X: 0.1, Y: 0.1}, Width: 0.5, Height: 0.5}, tr.calls[0]); diff != "" {
		t.Errorf("query region mismatch (-want +got):\n%s", diff)
	}

	if _, err := core.Pointer(ctx, "cam", PointerEvent{Kind: PointerDragEnd, X: 150, Y: 0}); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("out of bounds drag err = %v", err)
	}
	if len(tr.calls) != 1 {
		t.Errorf("rejected drag queried the backend")
	}

	res, err = core.Pointer(ctx, "cam", PointerEvent{Kind: PointerContextMenu})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cleared || res.State != "idle" || len(res.Frames) != 0 {
		t.Errorf("contextmenu result = %+v", res)
	}

	if _, err := core.Pointer(ctx, "cam", PointerEvent{Kind: "wheel"}); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("unknown event err = %v", err)
	}
}
