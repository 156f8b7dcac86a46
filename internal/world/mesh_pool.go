package world

import (
	"sync"

	"github.com/alitto/pond/v2"
)

// chunkBuilder заполняет и строит меши недостающих чанков окна.
// При workers <= 1 работает последовательно в вызывающей горутине.
type chunkBuilder struct {
	pool pond.Pool
}

func newChunkBuilder(workers int) *chunkBuilder {
	if workers <= 1 {
		return &chunkBuilder{}
	}
	return &chunkBuilder{pool: pond.NewPool(workers)}
}

// build возвращает чанки в порядке coords. При ошибке ни один чанк
// не возвращается, чтобы мир не зарегистрировал частичный результат.
func (b *chunkBuilder) build(coords []ChunkCoord, ctx ChunkContext) ([]*Chunk, error) {
	chunks := make([]*Chunk, len(coords))
	errs := make([]error, len(coords))

	if b.pool == nil || len(coords) < 2 {
		for i, coord := range coords {
			chunks[i], errs[i] = BuildChunk(coord, ctx)
		}
	} else {
		var wg sync.WaitGroup
		for i, coord := range coords {
			i, coord := i, coord
			wg.Add(1)
			b.pool.Submit(func() {
				defer wg.Done()
				// Каждая задача пишет только в свой индекс
				chunks[i], errs[i] = BuildChunk(coord, ctx)
			})
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// parallel сообщает, используется ли пул
func (b *chunkBuilder) parallel() bool {
	return b.pool != nil
}

func (b *chunkBuilder) stop() {
	if b.pool != nil {
		b.pool.StopAndWait()
	}
}
