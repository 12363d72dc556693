// Package main provides the mbox-scan binary: it walks every message of an
// mbox file through the classifier and prints a one-line summary per message
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/emersion/go-mbox"

	"github.com/abusix/bounce-parser/parser"
)

func main() {
	verbose := flag.Bool("v", false, "log classification decisions to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <mailbox.mbox>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("opening mbox: %v", err)
	}
	defer f.Close()

	opts := parser.Options{}
	if *verbose {
		opts.Logger = log.New(os.Stderr, "mbox-scan: ", 0).Printf
	}
	p := parser.New(opts)

	bounces, nonBounces, failures := 0, 0, 0
	reader := mbox.NewReader(f)
	for i := 0; ; i++ {
		msgReader, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("reading mbox message %d: %v", i, err)
		}
		raw, err := io.ReadAll(msgReader)
		if err != nil {
			log.Fatalf("reading mbox message %d: %v", i, err)
		}

		result, err := p.ParseBytes(raw)
		if err != nil {
			failures++
			fmt.Printf("%5d  error: %v\n", i, err)
			continue
		}
		if !result.IsBounce {
			nonBounces++
			fmt.Printf("%5d  non-bounce (%s)\n", i, result.NonBounceType)
			continue
		}
		bounces++
		for _, report := range result.Reports {
			fmt.Printf("%5d  bounce  %-40s %-14s %s\n", i, report.Email, report.StdReason, report.SMTPCode)
		}
		if len(result.Reports) == 0 {
			fmt.Printf("%5d  bounce  (no recipients extracted)\n", i)
		}
	}

	fmt.Printf("scanned: %d bounces, %d non-bounces, %d errors\n", bounces, nonBounces, failures)
}
