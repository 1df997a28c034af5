// Command apodctl drives a running apod-web server from the terminal. It uses
// the pkg/apod client library as its only integration point with the server.
//
//	apodctl show [date]        print the entry for date (default today)
//	apodctl save [date]        save the entry's media on the server
//	apodctl get <filename>     download a saved file (-o to choose the path)
//	apodctl watch              print save events as they happen
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxcd/apod-web/pkg/apod"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	serverURL := os.Getenv("APOD_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:5000"
	}
	var output string
	flag.StringVar(&serverURL, "server", serverURL, "apod-web server base URL")
	flag.StringVar(&output, "o", "", "output path for get (default: the filename)")
	flag.Usage = usage
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apod.NewClient(serverURL)
	if err := run(ctx, client, flag.Args(), output, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("apodctl failed")
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: apodctl [-server url] [-o path] show|save|get|watch [arg]\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, client *apod.Client, args []string, output string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	switch args[0] {
	case "show":
		p, err := client.Picture(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s\n%s\n\n%s\n", p.Date, p.Title, p.MediaURL(), p.Explanation)
		return nil

	case "save":
		p, saved, err := client.SavePicture(ctx, arg)
		if err != nil {
			return err
		}
		log.Info().Str("date", p.Date).Str("title", p.Title).Msg("saved on server")
		fmt.Fprintln(out, saved.Filename)
		return nil

	case "get":
		if arg == "" {
			return fmt.Errorf("get needs a filename")
		}
		return getFile(ctx, client, arg, output)

	case "watch":
		log.Info().Msg("waiting for save events, press Ctrl+C to stop")
		return client.Events(ctx, func(e apod.Event) {
			fmt.Fprintf(out, "%s %s %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.Filename)
		})
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func getFile(ctx context.Context, client *apod.Client, filename, output string) error {
	if output == "" {
		output = filename
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	contentType, err := client.File(ctx, filename, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(output)
		return err
	}
	log.Info().Str("path", output).Str("content_type", contentType).Msg("file downloaded")
	return nil
}
