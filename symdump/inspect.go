package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZenLiuCN/symbaker/extract"
	"github.com/ZenLiuCN/symbaker/extract/goobj"
	"github.com/ZenLiuCN/symbaker/nro"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:   "inspect",
	Action: inspect,
	Usage:  "display the layout of .nro images, the imports of go objects or the exports of other artifacts",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "pkg",
			Aliases: []string{"p"},
			Usage:   "package path of go objects or default main",
		},
	},
	Args:      true,
	ArgsUsage: "<artifact> [more artifacts...]",
}

func inspect(ctx *cli.Context) (err error) {
	w := ctx.App.Writer
	for _, s := range ctx.Args().Slice() {
		switch extract.FormatOf(s) {
		case extract.FormatModuleImage:
			err = inspectImage(w, s, ctx.Bool("debug"))
		case extract.FormatGoObject:
			err = inspectObject(w, s, ctx.String("pkg"))
		default:
			var names []string
			if names, err = newExtractor(ctx).Extract(ctx.Context, s); err == nil {
				fmt.Fprintf(w, "%s: %s, %d exports\n", s, size(s), len(names))
				for _, n := range names {
					fmt.Fprintf(w, "\t%s\n", n)
				}
			}
		}
		if err != nil {
			return
		}
	}
	return
}

func inspectImage(w io.Writer, path string, debug bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	d, err := nro.Inspect(data)
	fmt.Fprintf(w, "%s: %s\n", path, humanize.Bytes(uint64(len(data))))
	fmt.Fprintf(w, "\ttext 0x%X+0x%X ro 0x%X+0x%X data 0x%X+0x%X\n",
		d.Text.Offset, d.Text.Size, d.RO.Offset, d.RO.Size, d.Data.Offset, d.Data.Size)
	if err != nil {
		fmt.Fprintf(w, "\tdecode stopped: %v\n", err)
	} else {
		fmt.Fprintf(w, "\tMOD0 0x%X dynamic 0x%X symtab 0x%X strtab 0x%X+0x%X entries %d defined %d\n",
			d.ModOffset, d.DynamicOffset, d.SymTab, d.StrTab, d.StrSize, d.Count, len(nro.Parse(data)))
	}
	if debug {
		spew.Fdump(w, d)
	}
	return nil
}

func inspectObject(w io.Writer, path, pkg string) error {
	v, err := goobj.Inspector{PkgPath: pkg}.Imports(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s package %s\n", path, size(path), v.PkgPath)
	for _, s := range v.Sorted() {
		fmt.Fprintf(w, "\t%s\n", s)
	}
	return nil
}
