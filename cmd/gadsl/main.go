// Command gadsl looks substances up in the GADSL from a terminal.
//
//	gadsl search -cas 7439-92-1
//	gadsl search -name "Lead"
//	gadsl upload sheet.pdf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Ezhil1K/ChemSure/model"
	"github.com/Ezhil1K/ChemSure/pkg/logger"
	"github.com/Ezhil1K/ChemSure/service"
	"github.com/gabriel-vasile/mimetype"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage:
  gadsl search -cas <CAS RN>
  gadsl search -name <substance name>
  gadsl upload <file.pdf>`

var errUsage = errors.New(usage)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gadsl: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return exitUsage, fmt.Errorf("config error: %w", err)
	}

	logger.Init(&logger.Config{
		Level:  cfg.LogLevel,
		Format: "text",
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &printer{out: os.Stdout, colours: cfg.Colours}
	return execute(ctx, service.NewLookupClient(cfg.lookup()), p, os.Args[1:])
}

func execute(ctx context.Context, lookup service.Lookup, p *printer, args []string) (int, error) {
	if len(args) == 0 {
		return exitUsage, errUsage
	}

	switch args[0] {
	case "search":
		return search(ctx, lookup, p, args[1:])
	case "upload":
		return upload(ctx, lookup, p, args[1:])
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(p.out, usage)
		return exitOK, nil
	default:
		return exitUsage, fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func search(ctx context.Context, lookup service.Lookup, p *printer, args []string) (int, error) {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cas := fs.String("cas", "", "CAS registry number")
	name := fs.String("name", "", "substance name")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return exitUsage, errUsage
	}

	var query model.SearchQuery
	switch {
	case isSet(fs, "cas") && isSet(fs, "name"):
		return exitUsage, errors.New("use either -cas or -name, not both")
	case isSet(fs, "cas"):
		query = model.SearchQuery{Kind: model.SearchByCAS, Value: *cas}
	case isSet(fs, "name"):
		query = model.SearchQuery{Kind: model.SearchByName, Value: *name}
	default:
		return exitUsage, errUsage
	}

	records, err := lookup.Search(ctx, query)
	if err != nil {
		return failure(err, service.SearchMessage(query.Kind, err))
	}
	if len(records) == 0 {
		p.notListed()
		return exitOK, nil
	}
	p.records(records)
	return exitOK, nil
}

func upload(ctx context.Context, lookup service.Lookup, p *printer, args []string) (int, error) {
	if len(args) != 1 {
		return exitUsage, errUsage
	}
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return exitUsage, err
	}
	if info.IsDir() {
		return exitUsage, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return exitFailure, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return exitFailure, err
	}
	defer f.Close()

	records, err := lookup.Upload(ctx, model.UploadFile{
		Filename:    filepath.Base(path),
		ContentType: mtype.String(),
		Size:        info.Size(),
		Content:     f,
	})
	if err != nil {
		return failure(err, service.UploadMessage(err))
	}
	if len(records) == 0 {
		p.noneInDocument()
		return exitOK, nil
	}
	p.records(records)
	return exitOK, nil
}

// failure maps a lookup error to its exit code; rejected input counts as usage
func failure(err error, message string) (int, error) {
	if service.IsLocal(err) {
		return exitUsage, errors.New(message)
	}
	return exitFailure, errors.New(message)
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
