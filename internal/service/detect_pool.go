package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/detector"
)

// ErrDetectStopped is returned by Detect once the pool has been stopped.
var ErrDetectStopped = errors.New("detect pool stopped")

// DetectPool runs zone classification on a fixed set of workers so a burst of
// detect requests on one room never stalls relay delivery on another. Callers
// block for their own result; the relay never does.
type DetectPool struct {
	det  *detector.Detector
	jobs chan detectJob
	done chan struct{}
	once sync.Once
	log  *zap.Logger
}

type detectJob struct {
	image []byte
	roi   *detector.ROI
	out   chan detectResult
}

type detectResult struct {
	res *detector.Result
	err error
}

// NewDetectPool starts workers goroutines consuming detection jobs. Stop
// releases them.
func NewDetectPool(workers int, det *detector.Detector, log *zap.Logger) *DetectPool {
	if workers <= 0 {
		workers = 1
	}
	p := &DetectPool{
		det:  det,
		jobs: make(chan detectJob),
		done: make(chan struct{}),
		log:  log,
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	log.Info("detect pool started", zap.Int("workers", workers))
	return p
}

func (p *DetectPool) worker() {
	for {
		select {
		case job := <-p.jobs:
			res, err := p.det.Detect(job.image, job.roi)
			job.out <- detectResult{res: res, err: err}
		case <-p.done:
			return
		}
	}
}

// Detect submits a frame and waits for its classification. Enqueueing and
// waiting both honor ctx cancellation; a stopped pool fails fast with
// ErrDetectStopped.
func (p *DetectPool) Detect(ctx context.Context, image []byte, roi *detector.ROI) (*detector.Result, error) {
	select {
	case <-p.done:
		return nil, ErrDetectStopped
	default:
	}
	job := detectJob{image: image, roi: roi, out: make(chan detectResult, 1)}
	select {
	case p.jobs <- job:
	case <-p.done:
		return nil, ErrDetectStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-job.out:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop releases the workers once they finish their current job. Safe to call
// more than once.
func (p *DetectPool) Stop() {
	p.once.Do(func() { close(p.done) })
}
