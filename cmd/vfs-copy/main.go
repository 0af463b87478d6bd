package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/PipeG09/UM-vfs-base-2025/vfsimage"
)

func main() {
	app := &cli.App{
		Name:      "vfs-copy",
		Usage:     "Copy a file between the host filesystem and a virtual filesystem image",
		ArgsUsage: "IMAGE_PATH SRC DEST",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "export", Aliases: []string{"x"}, Usage: "copy SRC out of the image to the host path DEST, instead of importing"},
		},
		Action: copyFile,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("vfs-copy: %s", err.Error())
	}
}

func copyFile(ctx *cli.Context) error {
	if ctx.Args().Len() != 3 {
		return cli.Exit("expected exactly three arguments: IMAGE_PATH SRC DEST", 1)
	}
	imagePath, src, dest := ctx.Args().Get(0), ctx.Args().Get(1), ctx.Args().Get(2)

	img, err := vfsimage.Open(imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	if ctx.Bool("export") {
		data, err := img.ReadFile(src)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return img.WriteFile(dest, vfsimage.DefaultFilePerm, data)
}
