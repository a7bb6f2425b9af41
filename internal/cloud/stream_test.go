package cloud

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pcview/cutaway/internal/logger"
)

func TestMain(m *testing.M) {
	// Quiet structured logging for the test run.
	if err := logger.InitWithOptions("error", "", false); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeReader yields points with X = read index so order is checkable.
// available = 0 means the reader never runs out (a header undercount).
type fakeReader struct {
	declared  uint64
	available uint64
	failAfter uint64 // if > 0, error once this many records were read

	reads  atomic.Uint64
	closed atomic.Bool
}

func (r *fakeReader) Header() Header {
	return Header{PointCount: r.declared}
}

func (r *fakeReader) ReadNext() (PointRecord, error) {
	n := r.reads.Load()
	if r.failAfter > 0 && n >= r.failAfter {
		return PointRecord{}, errors.New("garbled record")
	}
	if r.available > 0 && n >= r.available {
		return PointRecord{}, io.EOF
	}
	r.reads.Add(1)
	return PointRecord{X: float64(n)}, nil
}

func (r *fakeReader) Close() error {
	r.closed.Store(true)
	return nil
}

// drain polls the session like the consumer loop would, collecting every
// batch until the producer disconnects.
func drain(t *testing.T, s *Session) []Batch {
	t.Helper()

	var got []Batch
	deadline := time.Now().Add(10 * time.Second)
	for !s.Finished() {
		if time.Now().After(deadline) {
			t.Fatal("timed out draining session")
		}
		batch, ok := s.Poll()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		got = append(got, batch)
	}
	return got
}

// checkSequential verifies that concatenating the batches reproduces the
// original read order 0, 1, 2, ...
func checkSequential(t *testing.T, batches []Batch) uint64 {
	t.Helper()

	var n uint64
	for bi, batch := range batches {
		for _, rec := range batch {
			if rec.X != float64(n) {
				t.Fatalf("batch %d: record out of order: X = %v, want %d", bi, rec.X, n)
			}
			n++
		}
	}
	return n
}

func TestLoadCutsOffOnePastLimit(t *testing.T) {
	// A reader with more data than its header claims, limit below both.
	r := &fakeReader{declared: 100, available: 0}
	s := BeginLoad(r, 25, 10)

	if s.DeclaredTotal() != 100 {
		t.Errorf("declared = %d, want 100", s.DeclaredTotal())
	}
	if s.EffectiveTotal() != 25 {
		t.Errorf("effective = %d, want 25", s.EffectiveTotal())
	}

	batches := drain(t, s)

	// Full batches flush at 10 and 20; the cutoff fires at 26 (> 25).
	wantSizes := []int{10, 10, 6}
	if len(batches) != len(wantSizes) {
		t.Fatalf("got %d batches, want %d", len(batches), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(batches[i]), want)
		}
	}

	if total := checkSequential(t, batches); total != 26 {
		t.Errorf("delivered %d points, want limit+1 = 26", total)
	}
}

func TestLoadLimitAtBatchBoundary(t *testing.T) {
	r := &fakeReader{declared: 100, available: 0}
	s := BeginLoad(r, 10, 10)

	batches := drain(t, s)

	// One full batch, then the single point that trips the cutoff.
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if len(batches[0]) != 10 || len(batches[1]) != 1 {
		t.Errorf("batch sizes = %d, %d, want 10, 1", len(batches[0]), len(batches[1]))
	}
	checkSequential(t, batches)
}

func TestLoadDrainsShortFile(t *testing.T) {
	// Reader ends mid-batch: the partial remainder must still arrive.
	r := &fakeReader{declared: 35, available: 35}
	s := BeginLoad(r, 0, 10)

	batches := drain(t, s)

	wantSizes := []int{10, 10, 10, 5}
	if len(batches) != len(wantSizes) {
		t.Fatalf("got %d batches, want %d", len(batches), len(wantSizes))
	}
	for i, want := range wantSizes {
		if len(batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(batches[i]), want)
		}
	}
	if total := checkSequential(t, batches); total != 35 {
		t.Errorf("delivered %d points, want 35", total)
	}
}

func TestLoadEmitsEmptyFinalBatch(t *testing.T) {
	// End-of-data lands exactly on a batch boundary; the trailing batch is
	// empty but still delivered before the stream closes.
	r := &fakeReader{declared: 20, available: 20}
	s := BeginLoad(r, 0, 10)

	batches := drain(t, s)

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[2]) != 0 {
		t.Errorf("final batch size = %d, want 0", len(batches[2]))
	}
	if total := checkSequential(t, batches); total != 20 {
		t.Errorf("delivered %d points, want 20", total)
	}
}

func TestLoadMillionPointScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("large fixture")
	}

	// Header declares one million points but the reader keeps going; with
	// the default batch size the cutoff delivers 500k + 500k + 1.
	r := &fakeReader{declared: 1_000_000, available: 0}
	s := BeginLoad(r, 0, 500_000)

	batches := drain(t, s)

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[0]) != 500_000 || len(batches[1]) != 500_000 || len(batches[2]) != 1 {
		t.Errorf("batch sizes = %d, %d, %d, want 500000, 500000, 1",
			len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if total := checkSequential(t, batches); total != 1_000_001 {
		t.Errorf("delivered %d points, want 1000001", total)
	}
}

func TestMalformedRecordTruncatesLoad(t *testing.T) {
	r := &fakeReader{declared: 100, available: 0, failAfter: 7}
	s := BeginLoad(r, 0, 10)

	batches := drain(t, s)

	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if total := checkSequential(t, batches); total != 7 {
		t.Errorf("delivered %d points, want 7 (silent truncation)", total)
	}
}

func TestCancelStopsProducer(t *testing.T) {
	r := &fakeReader{declared: 1 << 40, available: 0}
	s := BeginLoad(r, 0, 1000)

	s.Cancel()
	drain(t, s)

	if !s.Finished() {
		t.Error("session should be finished after cancel and drain")
	}

	// The producer must have exited and released the reader.
	deadline := time.Now().Add(5 * time.Second)
	for !r.closed.Load() {
		if time.Now().After(deadline) {
			t.Fatal("reader was not closed after cancellation")
		}
		time.Sleep(time.Millisecond)
	}

	// No further reads once the producer has stopped.
	n := r.reads.Load()
	time.Sleep(20 * time.Millisecond)
	if got := r.reads.Load(); got != n {
		t.Errorf("producer still reading after cancel: %d -> %d", n, got)
	}
}

func TestProgress(t *testing.T) {
	r := &fakeReader{declared: 100, available: 0}
	s := BeginLoad(r, 25, 10)

	if p := s.Progress(); p != 0 {
		t.Errorf("initial progress = %f, want 0", p)
	}

	batches := drain(t, s)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if p := s.Progress(); p != 1 {
		t.Errorf("final progress = %f, want 1", p)
	}
}

func TestNewSessionAfterCancelDeliversFreshData(t *testing.T) {
	old := &fakeReader{declared: 1 << 40, available: 0}
	oldSession := BeginLoad(old, 0, 1000)

	// The consumer drops the old session and starts a new one.
	oldSession.Cancel()

	fresh := &fakeReader{declared: 5, available: 5}
	s := BeginLoad(fresh, 0, 10)

	batches := drain(t, s)
	if total := checkSequential(t, batches); total != 5 {
		t.Errorf("new session delivered %d points, want 5", total)
	}
}
