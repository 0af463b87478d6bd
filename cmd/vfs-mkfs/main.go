package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/PipeG09/UM-vfs-base-2025/presets"
	"github.com/PipeG09/UM-vfs-base-2025/vfsimage"
)

func main() {
	app := &cli.App{
		Name:      "vfs-mkfs",
		Usage:     "Create a new, empty virtual filesystem image",
		ArgsUsage: "IMAGE_PATH [TOTAL_BLOCKS TOTAL_INODES]",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "blocks", Aliases: []string{"b"}, Usage: "total number of blocks in the image"},
			&cli.UintFlag{Name: "inodes", Aliases: []string{"n"}, Usage: "total number of inodes in the image"},
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: fmt.Sprintf("named geometry (%v) instead of --blocks/--inodes", presets.Names())},
		},
		Action: mkfs,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("vfs-mkfs: %s", err.Error())
	}
}

func mkfs(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 && ctx.Args().Len() != 3 {
		return cli.Exit("expected IMAGE_PATH, optionally followed by TOTAL_BLOCKS TOTAL_INODES", 1)
	}
	path := ctx.Args().Get(0)

	var totalBlocks, totalInodes uint

	if ctx.Args().Len() == 3 {
		b, errB := strconv.ParseUint(ctx.Args().Get(1), 10, 32)
		n, errN := strconv.ParseUint(ctx.Args().Get(2), 10, 32)
		if errB != nil || errN != nil {
			return cli.Exit("TOTAL_BLOCKS and TOTAL_INODES must be non-negative integers", 1)
		}
		totalBlocks, totalInodes = uint(b), uint(n)
	} else if preset := ctx.String("preset"); preset != "" {
		geometry, err := presets.Get(preset)
		if err != nil {
			return err
		}
		totalBlocks, totalInodes = geometry.TotalBlocks, geometry.TotalInodes
	} else {
		totalBlocks, totalInodes = ctx.Uint("blocks"), ctx.Uint("inodes")
		if totalBlocks == 0 || totalInodes == 0 {
			return cli.Exit("either --preset or both --blocks and --inodes must be given", 1)
		}
	}

	if err := vfsimage.Mkfs(path, uint32(totalBlocks), uint32(totalInodes)); err != nil {
		return err
	}

	fmt.Printf("created %s: %d blocks, %d inodes\n", path, totalBlocks, totalInodes)
	return nil
}
