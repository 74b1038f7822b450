package trackingService

import (
	"FaceTracking/internal/entity"
	"FaceTracking/pkg/log"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ProcessFunc func(ctx context.Context, frame entity.Frame) (*entity.OverlayUpdate, error)

// DeliverFunc receives the outcome of every processed frame, in submission
// order, from the pipeline's worker goroutine.
type DeliverFunc func(frame entity.Frame, update *entity.OverlayUpdate, err error)

// Pipeline feeds frames to a single worker through a bounded queue. When the
// queue is full the newest frame is dropped.
type Pipeline struct {
	frames  chan entity.Frame
	process ProcessFunc
	deliver DeliverFunc
	log     *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	seq     atomic.Uint64
	dropped atomic.Uint64
}

func NewPipeline(ctx context.Context, size int, process ProcessFunc, deliver DeliverFunc, logger *logrus.Logger) *Pipeline {
	if size <= 0 {
		size = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pipeline{
		frames:  make(chan entity.Frame, size),
		process: process,
		deliver: deliver,
		log:     logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(1)
	go p.run()

	return p
}

// Submit numbers the frame and queues it. It returns false when the frame
// was dropped.
func (p *Pipeline) Submit(frame entity.Frame) bool {
	frame.Seq = p.seq.Add(1)

	if p.ctx.Err() != nil {
		return false
	}

	select {
	case p.frames <- frame:
		return true
	default:
		dropped := p.dropped.Add(1)
		log.WithStream(p.log, frame.StreamID).WithFields(log.Fields{
			"seq":     frame.Seq,
			"dropped": dropped,
		}).Debug("Frame queue full, dropping frame")
		return false
	}
}

func (p *Pipeline) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops the worker and waits for it. Queued frames are discarded.
func (p *Pipeline) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case frame := <-p.frames:
			if p.ctx.Err() != nil {
				return
			}

			update, err := p.process(p.ctx, frame)
			if update != nil {
				update.Dropped = p.Dropped()
			}
			p.deliver(frame, update, err)
		}
	}
}

// NewPipeline returns a pipeline that processes frames with ProcessFrame and
// publishes every update before handing it to deliver.
func (s *trackingService) NewPipeline(ctx context.Context, deliver DeliverFunc) *Pipeline {
	publish := func(frame entity.Frame, update *entity.OverlayUpdate, err error) {
		if err == nil {
			if err := s.PublishOverlay(ctx, update); err != nil {
				log.WithStream(s.log, frame.StreamID).Warnf("Failed to publish overlay: %v", err)
			}
		}
		deliver(frame, update, err)
	}

	return NewPipeline(ctx, s.cfg.QueueSize, s.ProcessFrame, publish, s.log)
}
