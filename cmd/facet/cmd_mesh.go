package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/oracle"
	"github.com/spf13/cobra"
)

func newMeshCmd(a *app) *cobra.Command {
	var (
		output string
		cells  int
	)

	cmd := &cobra.Command{
		Use:   "mesh FILE",
		Short: "Extract a triangle mesh with marching cubes",
		Long: `Meshes the zero surface of the program in FILE inside the configured
bounds and writes it as JSON with flat vertex, normal and index arrays.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTree(cmd, args[0])
			if err != nil {
				return err
			}
			if cells <= 0 {
				cells = a.cfg.MeshCells
			}

			k := sdfx.New(cells, oracle.NewMemo())
			solid, err := k.Solid(t, a.cfg.Bounds.Min, a.cfg.Bounds.Max)
			if err != nil {
				return err
			}
			mesh, err := k.ToMesh(solid)
			if err != nil {
				return fmt.Errorf("mesh: %w", err)
			}
			if args[0] != "-" {
				mesh.Name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			a.log.Info("mesh extracted",
				slog.Int("cells", cells),
				slog.Int("triangles", mesh.TriangleCount()),
				slog.Int("vertices", mesh.VertexCount()),
			)

			if output == "" || output == "-" {
				return writeMesh(cmd.OutOrStdout(), mesh)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("mesh: %w", err)
			}
			if err := writeMesh(f, mesh); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&cells, "cells", 0, "marching cubes cells along the longest axis (default from config)")
	return cmd
}

func writeMesh(w io.Writer, mesh *kernel.Mesh) error {
	if err := json.NewEncoder(w).Encode(mesh); err != nil {
		return fmt.Errorf("mesh: write: %w", err)
	}
	return nil
}
