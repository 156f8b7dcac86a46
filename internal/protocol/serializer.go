package protocol

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-world/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
)

// Поля сообщения ChunkMesh (proto3):
//
//	message ChunkMesh {
//	  sint32 x = 1;
//	  sint32 z = 2;
//	  repeated float vertices = 3 [packed = true]; // x, y, z подряд
//	  repeated float uvs = 4 [packed = true];      // u, v подряд
//	  repeated uint32 indices = 5 [packed = true];
//	}
const (
	fieldX        protowire.Number = 1
	fieldZ        protowire.Number = 2
	fieldVertices protowire.Number = 3
	fieldUVs      protowire.Number = 4
	fieldIndices  protowire.Number = 5
)

// ErrInvalidFrame кадр повреждён или имеет неизвестный формат
var ErrInvalidFrame = errors.New("некорректный кадр меша")

// MeshSerializer кодирует меш чанка в сообщение Protocol Buffers
// и сжимает его zstd. Безопасен для параллельного использования.
type MeshSerializer struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewMeshSerializer создаёт сериализатор
func NewMeshSerializer() (*MeshSerializer, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}
	return &MeshSerializer{encoder: enc, decoder: dec}, nil
}

// Close освобождает ресурсы кодеков
func (ms *MeshSerializer) Close() {
	ms.encoder.Close()
	ms.decoder.Close()
}

// SerializeMesh кодирует меш чанка в сжатый кадр
func (ms *MeshSerializer) SerializeMesh(coord world.ChunkCoord, mesh *world.Mesh) ([]byte, error) {
	raw, err := MarshalMesh(coord, mesh)
	if err != nil {
		return nil, err
	}
	return ms.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// DeserializeMesh распаковывает и декодирует кадр
func (ms *MeshSerializer) DeserializeMesh(data []byte) (world.ChunkCoord, *world.Mesh, error) {
	raw, err := ms.decoder.DecodeAll(data, nil)
	if err != nil {
		return world.ChunkCoord{}, nil, fmt.Errorf("ошибка распаковки zstd: %w", err)
	}
	return UnmarshalMesh(raw)
}

// MarshalMesh несжатое protobuf-представление меша
func MarshalMesh(coord world.ChunkCoord, mesh *world.Mesh) ([]byte, error) {
	if mesh == nil {
		return nil, errors.New("меш не задан")
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("меш чанка %s: %w", coord, err)
	}

	// Нулевые координаты не пишутся, как в proto3
	var b []byte
	if coord.X != 0 {
		b = protowire.AppendTag(b, fieldX, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(int32(coord.X))))
	}
	if coord.Z != 0 {
		b = protowire.AppendTag(b, fieldZ, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(int32(coord.Z))))
	}

	if len(mesh.Vertices) > 0 {
		packed := make([]byte, 0, len(mesh.Vertices)*3*4)
		for _, v := range mesh.Vertices {
			for _, f := range v {
				packed = protowire.AppendFixed32(packed, math.Float32bits(f))
			}
		}
		b = appendPacked(b, fieldVertices, packed)

		packed = make([]byte, 0, len(mesh.UVs)*2*4)
		for _, uv := range mesh.UVs {
			for _, f := range uv {
				packed = protowire.AppendFixed32(packed, math.Float32bits(f))
			}
		}
		b = appendPacked(b, fieldUVs, packed)
	}

	if len(mesh.Indices) > 0 {
		var packed []byte
		for _, idx := range mesh.Indices {
			packed = protowire.AppendVarint(packed, uint64(idx))
		}
		b = appendPacked(b, fieldIndices, packed)
	}
	return b, nil
}

func appendPacked(b []byte, num protowire.Number, packed []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// UnmarshalMesh разбирает несжатое сообщение. Неизвестные поля
// пропускаются, повторяемые поля принимаются в packed и обычной форме.
func UnmarshalMesh(data []byte) (world.ChunkCoord, *world.Mesh, error) {
	var (
		coord    world.ChunkCoord
		vertices []float32
		uvs      []float32
		indices  []uint32
	)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return coord, nil, frameError(n)
		}
		data = data[n:]

		switch {
		case (num == fieldX || num == fieldZ) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return coord, nil, frameError(n)
			}
			data = data[n:]
			if num == fieldX {
				coord.X = int(int32(protowire.DecodeZigZag(v)))
			} else {
				coord.Z = int(int32(protowire.DecodeZigZag(v)))
			}

		case num == fieldVertices || num == fieldUVs:
			dst := &vertices
			if num == fieldUVs {
				dst = &uvs
			}
			n, err := consumeFloats(data, typ, dst)
			if err != nil {
				return coord, nil, err
			}
			data = data[n:]

		case num == fieldIndices:
			n, err := consumeIndices(data, typ, &indices)
			if err != nil {
				return coord, nil, err
			}
			data = data[n:]

		case num == fieldX || num == fieldZ:
			return coord, nil, fmt.Errorf("%w: поле %d имеет тип %d", ErrInvalidFrame, num, typ)

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return coord, nil, frameError(n)
			}
			data = data[n:]
		}
	}

	if len(vertices)%3 != 0 || len(uvs)%2 != 0 {
		return coord, nil, fmt.Errorf("%w: %d координат вершин, %d координат UV", ErrInvalidFrame, len(vertices), len(uvs))
	}

	mesh := &world.Mesh{
		Vertices: make([]mgl32.Vec3, len(vertices)/3),
		UVs:      make([]mgl32.Vec2, len(uvs)/2),
		Indices:  indices,
	}
	for i := range mesh.Vertices {
		mesh.Vertices[i] = mgl32.Vec3{vertices[i*3], vertices[i*3+1], vertices[i*3+2]}
	}
	for i := range mesh.UVs {
		mesh.UVs[i] = mgl32.Vec2{uvs[i*2], uvs[i*2+1]}
	}

	if err := mesh.Validate(); err != nil {
		return coord, nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return coord, mesh, nil
}

func consumeFloats(data []byte, typ protowire.Type, dst *[]float32) (int, error) {
	switch typ {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(data)
		if n < 0 {
			return 0, frameError(n)
		}
		*dst = append(*dst, math.Float32frombits(v))
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return 0, frameError(n)
		}
		if len(packed)%4 != 0 {
			return 0, fmt.Errorf("%w: длина packed float %d не кратна 4", ErrInvalidFrame, len(packed))
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeFixed32(packed)
			*dst = append(*dst, math.Float32frombits(v))
			packed = packed[m:]
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: поле float имеет тип %d", ErrInvalidFrame, typ)
	}
}

func consumeIndices(data []byte, typ protowire.Type, dst *[]uint32) (int, error) {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return 0, frameError(n)
		}
		if v > math.MaxUint32 {
			return 0, fmt.Errorf("%w: индекс %d вне uint32", ErrInvalidFrame, v)
		}
		*dst = append(*dst, uint32(v))
		return n, nil
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return 0, frameError(n)
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return 0, frameError(m)
			}
			if v > math.MaxUint32 {
				return 0, fmt.Errorf("%w: индекс %d вне uint32", ErrInvalidFrame, v)
			}
			*dst = append(*dst, uint32(v))
			packed = packed[m:]
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: поле indices имеет тип %d", ErrInvalidFrame, typ)
	}
}

func frameError(n int) error {
	return fmt.Errorf("%w: %v", ErrInvalidFrame, protowire.ParseError(n))
}
