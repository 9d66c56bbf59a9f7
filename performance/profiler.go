package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/jamespfennell/gtfsclean"
	"github.com/jamespfennell/gtfsclean/agency/stlevis"
)

var out = flag.String("out", "gtfsclean_profile.pb.gz", "file path to output the profile to")
var rounds = flag.Int("rounds", 1, "number of times to clean each feed")

func main() {
	if err := run(); err != nil {
		fmt.Println("failed:", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	var feeds [][]byte
	for _, path := range flag.Args() {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		feeds = append(feeds, b)
	}
	a, err := stlevis.New(stlevis.Opts{})
	if err != nil {
		return err
	}
	opts := gtfsclean.ParseStaticOptions{
		Agency:      a,
		FatalPolicy: gtfsclean.FatalPolicy_SkipRecord,
	}

	fmt.Println("starting profile")
	var profile bytes.Buffer
	if err := pprof.StartCPUProfile(&profile); err != nil {
		return err
	}
	for r := 0; r < *rounds; r++ {
		for i, feed := range feeds {
			fmt.Printf("round %d: cleaning feed %d/%d\n", r+1, i+1, len(feeds))
			if _, err := gtfsclean.ParseStatic(feed, opts); err != nil {
				pprof.StopCPUProfile()
				return err
			}
		}
	}
	pprof.StopCPUProfile()

	fmt.Println("writing profile to", *out)
	return os.WriteFile(*out, profile.Bytes(), 0644)
}
