package sim

import "go.uber.org/zap"

// LogObserver writes every sample at debug level.
type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnStep(s Sample) {
	o.log.Debug("step",
		zap.Float64("t", s.Time),
		zap.Float64("muscle_force", s.Force),
		zap.Float64("muscle_torque", s.MuscleTorque),
		zap.Float64("gravity_torque", s.GravityTorque),
	)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }

// ChannelObserver streams samples to a channel. The channel must be drained
// or buffered for the whole run; OnStep blocks otherwise.
type ChannelObserver struct {
	C chan Sample
}

func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Sample, buffer)}
}

func (o *ChannelObserver) OnStep(s Sample) { o.C <- s }

// Close closes the stream once the run has returned.
func (o *ChannelObserver) Close() { close(o.C) }
