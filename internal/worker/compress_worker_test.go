package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingAck struct {
	acked, nacked, requeued bool
}

func (r *recordingAck) Ack(bool) error { r.acked = true; return nil }

func (r *recordingAck) Nack(_ bool, requeue bool) error {
	r.nacked = true
	r.requeued = requeue
	return nil
}

type stubProcessor struct {
	got []uint
	err error
}

func (s *stubProcessor) Process(_ context.Context, fileID uint) error {
	s.got = append(s.got, fileID)
	return s.err
}

func TestDispatch_AcksProcessedJob(t *testing.T) {
	p := &stubProcessor{}
	w := NewCompressWorker(nil, p, "q", zaptest.NewLogger(t))
	ack := &recordingAck{}

	w.dispatch(context.Background(), []byte(`{"job_id":"j1","file_id":7}`), ack)

	assert.Equal(t, []uint{7}, p.got)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestDispatch_NacksBadPayload(t *testing.T) {
	p := &stubProcessor{}
	w := NewCompressWorker(nil, p, "q", zaptest.NewLogger(t))

	for _, body := range []string{"not json", `{"job_id":"j"}`} {
		ack := &recordingAck{}
		w.dispatch(context.Background(), []byte(body), ack)
		assert.True(t, ack.nacked, body)
	}
	assert.Empty(t, p.got)
}

func TestDispatch_NacksProcessorError(t *testing.T) {
	p := &stubProcessor{err: errors.New("db down")}
	w := NewCompressWorker(nil, p, "q", zaptest.NewLogger(t))
	ack := &recordingAck{}

	w.dispatch(context.Background(), []byte(`{"job_id":"j1","file_id":3}`), ack)
	assert.True(t, ack.nacked)
	assert.False(t, ack.acked)
	assert.False(t, ack.requeued)
}

func TestDispatch_RequeuesInterruptedJob(t *testing.T) {
	p := &stubProcessor{err: fmt.Errorf("compress job interrupted: %w", context.Canceled)}
	w := NewCompressWorker(nil, p, "q", zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ack := &recordingAck{}

	w.dispatch(ctx, []byte(`{"job_id":"j2","file_id":4}`), ack)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
	assert.False(t, ack.acked)
}

func TestClose_WithoutStart(t *testing.T) {
	w := NewCompressWorker(nil, &stubProcessor{}, "q", zaptest.NewLogger(t))
	w.Close()
}
