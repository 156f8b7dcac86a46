package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/protocol"
	"github.com/annel0/voxel-world/internal/render"
	"github.com/annel0/voxel-world/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path (default GAME_CONFIG)")
		command    = flag.String("cmd", "stats", "Command: stats, obj, bin, world-obj")
		chunkX     = flag.Int("x", 0, "Chunk X")
		chunkZ     = flag.Int("z", 0, "Chunk Z")
		output     = flag.String("out", "", "Output file (default stdout)")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logging.SetDefaultLevel(logging.DEBUG)
		logging.GetMeshLogger().SetConsoleLevel(logging.DEBUG)
	} else {
		logging.GetMeshLogger().SetConsoleLevel(logging.WARN)
		logging.GetWorldLogger().SetConsoleLevel(logging.WARN)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}
	table, err := cfg.BlockTable()
	if err != nil {
		log.Fatalf("❌ Block table: %v", err)
	}
	gen, err := cfg.NewGenerator(table)
	if err != nil {
		log.Fatalf("❌ Generator: %v", err)
	}

	coord := world.ChunkCoord{X: *chunkX, Z: *chunkZ}
	ctx := world.ChunkContext{
		Table:     table,
		Material:  cfg.Material(),
		Generator: gen,
		Settings:  cfg.Settings(),
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("❌ Output: %v", err)
		}
		defer f.Close()
		out = f
	}

	switch *command {
	case "stats":
		chunk := mustBuild(coord, ctx)
		m := chunk.Mesh()
		fmt.Fprintf(out, "chunk %s\n", coord)
		fmt.Fprintf(out, "  faces:            %d\n", m.FaceCount())
		fmt.Fprintf(out, "  vertices:         %d\n", len(m.Vertices))
		fmt.Fprintf(out, "  triangles:        %d\n", m.TriangleCount())
		fmt.Fprintf(out, "  missing textures: %d\n", m.MissingTextures)

	case "obj":
		chunk := mustBuild(coord, ctx)
		origin := coord.Origin(ctx.Settings.ChunkWidth)
		name := fmt.Sprintf("chunk_%d_%d", coord.X, coord.Z)
		if err := render.WriteOBJ(out, name, chunk.Mesh(), origin.ToFloat()); err != nil {
			log.Fatalf("❌ OBJ: %v", err)
		}

	case "bin":
		chunk := mustBuild(coord, ctx)
		ms, err := protocol.NewMeshSerializer()
		if err != nil {
			log.Fatalf("❌ Serializer: %v", err)
		}
		defer ms.Close()
		data, err := ms.SerializeMesh(coord, chunk.Mesh())
		if err != nil {
			log.Fatalf("❌ Encode: %v", err)
		}
		if _, err := out.Write(data); err != nil {
			log.Fatalf("❌ Write: %v", err)
		}
		fmt.Fprintf(os.Stderr, "✅ %d bytes\n", len(data))

	case "world-obj":
		// Окно видимости вокруг чанка, как его увидит наблюдатель
		w, err := world.NewWorld(cfg.Settings(), table, cfg.Material(), gen)
		if err != nil {
			log.Fatalf("❌ World: %v", err)
		}
		defer w.Close()
		if err := w.Reconcile(coord); err != nil {
			log.Fatalf("❌ Reconcile: %v", err)
		}
		if err := render.WriteWorldOBJ(out, w); err != nil {
			log.Fatalf("❌ OBJ: %v", err)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		flag.Usage()
		os.Exit(2)
	}
}

func mustBuild(coord world.ChunkCoord, ctx world.ChunkContext) *world.Chunk {
	chunk, err := world.BuildChunk(coord, ctx)
	if err != nil {
		log.Fatalf("❌ Chunk %s: %v", coord, err)
	}
	return chunk
}
