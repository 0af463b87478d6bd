package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/PipeG09/UM-vfs-base-2025/vfsimage"
)

func main() {
	app := &cli.App{
		Name:      "vfs-trunc",
		Usage:     "Truncate files stored in a virtual filesystem image to zero length",
		ArgsUsage: "IMAGE_PATH FILE...",
		Action:    trunc,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("vfs-trunc: %s", err.Error())
	}
}

func trunc(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return cli.Exit("expected IMAGE_PATH and at least one FILE", 1)
	}

	img, err := vfsimage.Open(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer img.Close()

	var result *multierror.Error
	for _, name := range ctx.Args().Slice()[1:] {
		if err := img.TruncateFile(name); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}
