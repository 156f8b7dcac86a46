package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/world"
	"github.com/annel0/voxel-world/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func buildMesh(t *testing.T, coord world.ChunkCoord) *world.Mesh {
	t.Helper()
	c, err := world.BuildChunk(coord, world.ChunkContext{
		Table:     block.DefaultTable(),
		Material:  &world.Material{Name: "atlas"},
		Generator: world.NewPerlinGenerator(3, 15),
		Settings:  world.DefaultSettings(),
		Logger:    logging.NewWriterLogger("test", &bytes.Buffer{}, logging.ERROR),
	})
	require.NoError(t, err)
	return c.Mesh()
}

func TestMeshSerializerRoundTrip(t *testing.T) {
	ms, err := NewMeshSerializer()
	require.NoError(t, err)
	defer ms.Close()

	coord := world.ChunkCoord{X: -3, Z: 41}
	mesh := buildMesh(t, coord)

	data, err := ms.SerializeMesh(coord, mesh)
	require.NoError(t, err)

	raw, err := MarshalMesh(coord, mesh)
	require.NoError(t, err)
	assert.Less(t, len(data), len(raw))

	gotCoord, gotMesh, err := ms.DeserializeMesh(data)
	require.NoError(t, err)
	assert.Equal(t, coord, gotCoord)
	assert.Equal(t, mesh.Vertices, gotMesh.Vertices)
	assert.Equal(t, mesh.UVs, gotMesh.UVs)
	assert.Equal(t, mesh.Indices, gotMesh.Indices)
}

func TestMarshalMeshWireFormat(t *testing.T) {
	mesh := buildMesh(t, world.ChunkCoord{})
	raw, err := MarshalMesh(world.ChunkCoord{X: 1, Z: -2}, mesh)
	require.NoError(t, err)

	// Разбираем сообщение средствами protowire независимо от UnmarshalMesh
	fields := make(map[protowire.Number][]byte)
	var order []protowire.Number
	for data := raw; len(data) > 0; {
		num, typ, n := protowire.ConsumeTag(data)
		require.Positive(t, n)
		data = data[n:]
		switch num {
		case fieldX, fieldZ:
			require.Equal(t, protowire.VarintType, typ)
			v, n := protowire.ConsumeVarint(data)
			require.Positive(t, n)
			fields[num] = protowire.AppendVarint(nil, v)
			data = data[n:]
		default:
			require.Equal(t, protowire.BytesType, typ, "поле %d", num)
			v, n := protowire.ConsumeBytes(data)
			require.Positive(t, n)
			fields[num] = v
			data = data[n:]
		}
		order = append(order, num)
	}

	assert.Equal(t, []protowire.Number{fieldX, fieldZ, fieldVertices, fieldUVs, fieldIndices}, order)
	x, _ := protowire.ConsumeVarint(fields[fieldX])
	z, _ := protowire.ConsumeVarint(fields[fieldZ])
	assert.Equal(t, int64(1), protowire.DecodeZigZag(x))
	assert.Equal(t, int64(-2), protowire.DecodeZigZag(z))
	assert.Len(t, fields[fieldVertices], len(mesh.Vertices)*3*4)
	assert.Len(t, fields[fieldUVs], len(mesh.UVs)*2*4)

	first, _ := protowire.ConsumeFixed32(fields[fieldVertices])
	assert.Equal(t, mesh.Vertices[0][0], math.Float32frombits(first))
}

func TestUnmarshalMeshEmptyMessage(t *testing.T) {
	raw, err := MarshalMesh(world.ChunkCoord{}, &world.Mesh{})
	require.NoError(t, err)
	assert.Empty(t, raw)

	coord, mesh, err := UnmarshalMesh(nil)
	require.NoError(t, err)
	assert.Equal(t, world.ChunkCoord{}, coord)
	assert.Zero(t, mesh.FaceCount())
}

func TestUnmarshalMeshAcceptsUnpackedAndUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, fieldZ, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(-7))
	// Неизвестное поле из будущей версии формата
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("lod"))
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			b = protowire.AppendTag(b, fieldVertices, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, math.Float32bits(float32(i+j)))
		}
		for j := 0; j < 2; j++ {
			b = protowire.AppendTag(b, fieldUVs, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, math.Float32bits(0.25))
		}
	}
	for _, idx := range []uint64{0, 1, 2, 2, 3, 0} {
		b = protowire.AppendTag(b, fieldIndices, protowire.VarintType)
		b = protowire.AppendVarint(b, idx)
	}

	coord, mesh, err := UnmarshalMesh(b)
	require.NoError(t, err)
	assert.Equal(t, world.ChunkCoord{X: 0, Z: -7}, coord)
	assert.Equal(t, 1, mesh.FaceCount())
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, mesh.Indices)
}

func TestUnmarshalMeshRejectsCorruptFrames(t *testing.T) {
	mesh := buildMesh(t, world.ChunkCoord{})
	raw, err := MarshalMesh(world.ChunkCoord{X: 3}, mesh)
	require.NoError(t, err)

	wrongType := protowire.AppendTag(nil, fieldVertices, protowire.VarintType)
	wrongType = protowire.AppendVarint(wrongType, 1)

	wrongCoord := protowire.AppendTag(nil, fieldX, protowire.BytesType)
	wrongCoord = protowire.AppendBytes(wrongCoord, []byte{1})

	oddVertices := appendPacked(nil, fieldVertices, protowire.AppendFixed32(protowire.AppendFixed32(nil, 0), 0))

	badIndex := appendPacked(nil, fieldVertices, make([]byte, 4*3*4))
	badIndex = appendPacked(badIndex, fieldUVs, make([]byte, 4*2*4))
	badIndex = appendPacked(badIndex, fieldIndices, []byte{0, 1, 2, 2, 3, 99})

	tests := map[string][]byte{
		"обрезанный":           raw[:len(raw)-3],
		"лишний нулевой байт":  append(append([]byte(nil), raw...), 0),
		"неверный тип вершин":  wrongType,
		"неверный тип коорд.":  wrongCoord,
		"вершины не кратны 3":  oddVertices,
		"индекс вне вершин":    badIndex,
		"packed float обрезан": appendPacked(nil, fieldUVs, []byte{1, 2, 3}),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := UnmarshalMesh(data)
			assert.True(t, errors.Is(err, ErrInvalidFrame), "получено %v", err)
		})
	}
}

func TestDeserializeRejectsNonZstd(t *testing.T) {
	ms, err := NewMeshSerializer()
	require.NoError(t, err)
	defer ms.Close()

	_, _, err = ms.DeserializeMesh([]byte("not a zstd frame"))
	assert.Error(t, err)
}

func TestMarshalMeshRejectsInvalidMesh(t *testing.T) {
	_, err := MarshalMesh(world.ChunkCoord{}, nil)
	assert.Error(t, err)

	mesh := buildMesh(t, world.ChunkCoord{})
	mesh.Indices = mesh.Indices[:len(mesh.Indices)-1]
	_, err = MarshalMesh(world.ChunkCoord{}, mesh)
	assert.Error(t, err)
}

func TestMeshPayloadJSON(t *testing.T) {
	coord := world.ChunkCoord{X: 4, Z: 5}
	mesh := buildMesh(t, coord)

	data, err := json.Marshal(NewMeshPayload(coord, mesh))
	require.NoError(t, err)

	var p MeshPayload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, mesh.FaceCount(), p.Faces)

	gotCoord, gotMesh := p.Mesh()
	assert.Equal(t, coord, gotCoord)
	assert.Equal(t, mesh.Vertices, gotMesh.Vertices)
	assert.Equal(t, mesh.Indices, gotMesh.Indices)
}
