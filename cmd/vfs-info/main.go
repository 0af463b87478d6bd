package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"

	"github.com/PipeG09/UM-vfs-base-2025/vfsimage"
)

type infoRow struct {
	Field string `csv:"field"`
	Value string `csv:"value"`
}

func main() {
	app := &cli.App{
		Name:      "vfs-info",
		Usage:     "Print the geometry and free-space counters of a virtual filesystem image",
		ArgsUsage: "IMAGE_PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "csv", Usage: "render as CSV instead of a plain field/value table"},
		},
		Action: info,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("vfs-info: %s", err.Error())
	}
}

func info(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return cli.Exit("expected exactly one argument: IMAGE_PATH", 1)
	}

	img, err := vfsimage.Open(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	sb := img.Superblock()
	rows := []infoRow{
		{"version", fmt.Sprint(sb.Version)},
		{"total_blocks", fmt.Sprint(sb.TotalBlocks)},
		{"total_inodes", fmt.Sprint(sb.TotalInodes)},
		{"free_blocks", fmt.Sprint(sb.FreeBlocks)},
		{"free_inodes", fmt.Sprint(sb.FreeInodes)},
		{"block_bitmap_start", fmt.Sprint(sb.BlockBitmapStart)},
		{"inode_bitmap_start", fmt.Sprint(sb.InodeBitmapStart)},
		{"inode_table_start", fmt.Sprint(sb.InodeTableStart)},
		{"data_region_start", fmt.Sprint(sb.DataRegionStart)},
	}

	if ctx.Bool("csv") {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	for _, row := range rows {
		fmt.Printf("%-20s %s\n", row.Field, row.Value)
	}
	return nil
}
