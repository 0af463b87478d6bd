package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"

	"github.com/PipeG09/UM-vfs-base-2025/vfsimage"
)

type listRow struct {
	Name   string `csv:"name"`
	Inode  uint32 `csv:"inode"`
	Mode   string `csv:"mode"`
	Size   uint32 `csv:"size"`
	Blocks uint16 `csv:"blocks"`
}

func main() {
	app := &cli.App{
		Name:      "vfs-ls",
		Usage:     "List the files stored in a virtual filesystem image",
		ArgsUsage: "IMAGE_PATH",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "csv", Usage: "render as CSV instead of a plain table"},
		},
		Action: list,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("vfs-ls: %s", err.Error())
	}
}

func modeString(info vfsimage.FileInfo) string {
	kind := byte('-')
	if info.Mode&vfsimage.ModeDir != 0 {
		kind = 'd'
	}
	return fmt.Sprintf("%c%03o", kind, info.Mode&vfsimage.ModePerm)
}

func toRows(infos []vfsimage.FileInfo) []listRow {
	rows := make([]listRow, len(infos))
	for i, info := range infos {
		rows[i] = listRow{
			Name:   info.Name,
			Inode:  info.InodeNum,
			Mode:   modeString(info),
			Size:   info.Size,
			Blocks: info.Blocks,
		}
	}
	return rows
}

func render(ctx *cli.Context, rows []listRow) error {
	if ctx.Bool("csv") {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}
	for _, row := range rows {
		fmt.Printf("%s %6d %8d  %s\n", row.Mode, row.Inode, row.Size, row.Name)
	}
	return nil
}

func list(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return cli.Exit("expected exactly one argument: IMAGE_PATH", 1)
	}

	img, err := vfsimage.Open(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	infos, err := img.ListInfo()
	if err != nil {
		return err
	}
	return render(ctx, toRows(infos))
}
