package tracestore

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thesyncim/lc3"
)

func openStore(t *testing.T, batch int) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "traces.db"), BatchSize: batch}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSummary(t *testing.T) {
	s := openStore(t, 4)

	sess := &Session{Label: "unit", Direction: "decode", DurationUS: 10000, SampleRateHz: 48000, Channels: 1, FrameBytes: 120}
	require.NoError(t, s.StartSession(sess))
	require.NotZero(t, sess.ID)

	traces := []lc3.FrameTrace{
		{Direction: lc3.DirectionDecode, Frame: 0, Gain: 100, Bits: 900, BandwidthHz: 24000, Attack: true},
		{Direction: lc3.DirectionDecode, Frame: 1, Gain: 120, Bits: 940, BandwidthHz: 24000},
		{Direction: lc3.DirectionDecode, Frame: 2, Gain: 140, Bits: 960, BandwidthHz: 8000, TNSOrders: [2]int{3, 1}},
		{Direction: lc3.DirectionDecode, Frame: 3, Concealed: true, Lost: 1, Fade: 1, Err: lc3.ErrCorruptBitstream},
		{Direction: lc3.DirectionDecode, Frame: 4, Concealed: true, Lost: 2, Fade: 0.9},
	}
	for _, tr := range traces {
		s.TraceFrame(tr)
	}
	require.NoError(t, s.Flush())

	sum, err := s.Summary(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.Frames)
	assert.Equal(t, int64(2), sum.Concealed)
	assert.Equal(t, int64(1), sum.Attacks)
	assert.Equal(t, int64(1), sum.Errors)
	assert.InDelta(t, 72.0, sum.MeanGain, 1e-9)
	assert.InDelta(t, 560.0, sum.MeanBits, 1e-9)

	bw, err := s.Bandwidths(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []BandwidthCount{{8000, 1}, {24000, 2}}, bw)

	frames, err := s.Frames(sess.ID, 0)
	require.NoError(t, err)
	require.Len(t, frames, 5)
	assert.Equal(t, 3, frames[2].TNSOrder0)
	assert.Equal(t, "decode", frames[3].Direction)
	assert.Contains(t, frames[3].Err, "corrupt")
	assert.InDelta(t, 0.9, frames[4].Fade, 1e-12)

	empty, err := s.Summary(sess.ID + 100)
	require.NoError(t, err)
	assert.Zero(t, empty.Frames)
}

func TestStoreSessionsAndConcurrency(t *testing.T) {
	s := openStore(t, 16)

	first := &Session{Label: "a"}
	require.NoError(t, s.StartSession(first))
	var wg sync.WaitGroup
	for ch := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range 25 {
				s.TraceFrame(lc3.FrameTrace{Channel: ch, Frame: uint64(f), Gain: f})
			}
		}()
	}
	wg.Wait()

	second := &Session{Label: "b"}
	require.NoError(t, s.StartSession(second))
	s.TraceFrame(lc3.FrameTrace{Frame: 0})
	require.NoError(t, s.Flush())

	sessions, err := s.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].Label)

	sum, err := s.Summary(first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), sum.Frames)
	sum, err = s.Summary(second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.Frames)

	frames, err := s.Frames(first.ID, 2)
	require.NoError(t, err)
	require.Len(t, frames, 25)
	for i, f := range frames {
		assert.Equal(t, uint64(i), f.Seq)
	}
}

func TestStoreAsEncoderTracer(t *testing.T) {
	s := openStore(t, 0)
	sess := &Session{Label: "encode", Direction: "encode"}
	require.NoError(t, s.StartSession(sess))

	enc, err := lc3.NewMultiEncoder(5000, 16000, 2, lc3.WithTracer(s))
	require.NoError(t, err)
	for range 3 {
		_, err := enc.Encode(make(lc3.Int16Samples, 2*enc.FrameSamples()), 30)
		require.NoError(t, err)
	}
	require.NoError(t, s.Flush())

	sum, err := s.Summary(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), sum.Frames)
	assert.Zero(t, sum.Errors)
}

func TestStoreKeepsWriteError(t *testing.T) {
	s := openStore(t, 1)
	require.NoError(t, s.StartSession(&Session{Label: "broken", Direction: "decode"}))
	require.NoError(t, s.db.Migrator().DropTable(&FrameRecord{}))

	s.TraceFrame(lc3.FrameTrace{Channel: 0})
	err := s.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracestore: write traces")

	s.TraceFrame(lc3.FrameTrace{Channel: 0})
	assert.Equal(t, err, s.Flush())
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, lc3.ErrInvalidArgument))
}
