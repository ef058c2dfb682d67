package main

import (
	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/microfin/loanval/snapshot"
)

var (
	cli struct {
		Loan bool   `help:"Treat the file as a loan snapshot instead of a product."`
		File string `help:"Snapshot file to dump." arg:"" type:"existingfile"`
	}
)

func main() {
	ctx := kong.Parse(&cli)

	if cli.Loan {
		l, err := snapshot.LoadLoan(cli.File)
		ctx.FatalIfErrorf(err)

		repr.Println(l.ToDomain(nil, nil))
		return
	}

	p, err := snapshot.LoadProduct(cli.File)
	ctx.FatalIfErrorf(err)

	repr.Println(p.ToDomain())
}
