package world

// Renderer внешний потребитель мешей. Вызывается только из
// единственного писателя мира, реализациям не нужна синхронизация
// относительно самого World.
type Renderer interface {
	// Upload передаёт построенный меш чанка вместе с общим материалом
	Upload(coord ChunkCoord, mesh *Mesh, material *Material)
	// SetVisible включает или скрывает меш чанка
	SetVisible(coord ChunkCoord, visible bool)
	// Release освобождает ресурсы выгруженного чанка
	Release(coord ChunkCoord)
}

// NopRenderer рендерер, который ничего не делает
type NopRenderer struct{}

func (NopRenderer) Upload(ChunkCoord, *Mesh, *Material) {}
func (NopRenderer) SetVisible(ChunkCoord, bool)         {}
func (NopRenderer) Release(ChunkCoord)                  {}
