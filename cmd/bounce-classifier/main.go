// Package main provides the bounce-classifier binary: it reads one raw
// message per input file (or stdin) and prints the classification as JSON
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abusix/bounce-parser/parser"
)

// Config is the optional YAML configuration file
type Config struct {
	ReportNonBounces bool `yaml:"report_non_bounces"`
	Verbose          bool `yaml:"verbose"`
}

func loadConfig(path string) (*Config, error) {
	config := &Config{}
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return config, nil
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	verbose := flag.Bool("v", false, "log classification decisions to stderr")
	reportNonBounces := flag.Bool("report-non-bounces", false, "keep delivery reports that describe successes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [message.eml ...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads raw messages from the named files, or one message from stdin.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *verbose {
		config.Verbose = true
	}
	if *reportNonBounces {
		config.ReportNonBounces = true
	}

	opts := parser.Options{ReportNonBounces: config.ReportNonBounces}
	if config.Verbose {
		opts.Logger = log.New(os.Stderr, "bounce-classifier: ", 0).Printf
	}
	p := parser.New(opts)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if flag.NArg() == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("reading stdin: %v", err)
		}
		classify(p, encoder, "stdin", raw)
		return
	}

	for _, path := range flag.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("reading %s: %v", path, err)
		}
		classify(p, encoder, path, raw)
	}
}

func classify(p *parser.Parser, encoder *json.Encoder, name string, raw []byte) {
	result, err := p.ParseBytes(raw)
	if err != nil {
		log.Fatalf("parsing %s: %v", name, err)
	}
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("encoding result for %s: %v", name, err)
	}
}
