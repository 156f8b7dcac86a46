package driver

import (
	"context"
	"math"
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Ticker принимает новые позиции наблюдателя. Реализуется world.World.
// ctx несёт спан шага, работа мира пишется его дочерними спанами.
type Ticker interface {
	TickContext(ctx context.Context, pos mgl32.Vec3) error
}

// Path позиция наблюдателя в зависимости от прошедшего времени
type Path interface {
	Position(elapsed time.Duration) mgl32.Vec3
}

// Orbit круговой облёт вокруг Center в горизонтальной плоскости
type Orbit struct {
	Center mgl32.Vec3
	Radius float32
	Period time.Duration
}

// Position реализует Path
func (o Orbit) Position(elapsed time.Duration) mgl32.Vec3 {
	if o.Period <= 0 {
		return o.Center.Add(mgl32.Vec3{o.Radius, 0, 0})
	}
	angle := 2 * math.Pi * elapsed.Seconds() / o.Period.Seconds()
	return o.Center.Add(mgl32.Vec3{
		o.Radius * float32(math.Cos(angle)),
		0,
		o.Radius * float32(math.Sin(angle)),
	})
}

// Driver двигает наблюдателя по пути с фиксированным шагом
type Driver struct {
	target   Ticker
	path     Path
	interval time.Duration
	logger   *logging.Logger
	tracer   trace.Tracer

	ticks  uint64
	errors uint64
}

// Option настройка Driver
type Option func(*Driver)

// WithTracerProvider задаёт провайдер спанов шага
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Driver) {
		if tp != nil {
			d.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "voxel-world/driver"

// New создаёт драйвер. interval <= 0 заменяется на 50 мс.
func New(target Ticker, path Path, interval time.Duration, logger *logging.Logger, opts ...Option) *Driver {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	if logger == nil {
		logger = logging.GetDriverLogger()
	}
	d := &Driver{
		target:   target,
		path:     path,
		interval: interval,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Step выполняет один шаг для момента elapsed от старта
func (d *Driver) Step(ctx context.Context, elapsed time.Duration) error {
	pos := d.path.Position(elapsed)

	ctx, span := d.tracer.Start(ctx, "observer.tick", trace.WithAttributes(
		attribute.Float64("observer.x", float64(pos.X())),
		attribute.Float64("observer.z", float64(pos.Z())),
	))
	defer span.End()

	d.ticks++
	if err := d.target.TickContext(ctx, pos); err != nil {
		d.errors++
		span.RecordError(err)
		return err
	}
	return nil
}

// Run крутит цикл до отмены контекста. Ошибки шага логируются
// и не останавливают цикл.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	start := time.Now()
	d.logger.Info("🚶 Драйвер наблюдателя запущен, шаг %s", d.interval)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Драйвер остановлен после %d шагов (%d ошибок)", d.ticks, d.errors)
			return
		case now := <-ticker.C:
			if err := d.Step(ctx, now.Sub(start)); err != nil {
				d.logger.Warn("Шаг наблюдателя завершился ошибкой: %v", err)
			}
		}
	}
}

// Stats число выполненных шагов и ошибок. Вызывать после остановки Run.
func (d *Driver) Stats() (ticks, errors uint64) {
	return d.ticks, d.errors
}
