// Command appmetrics-example emulates some work, tags its instruments, and
// reports them to CSV files at a fixed interval.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/appmetrics/appmetrics"
	"github.com/appmetrics/appmetrics/csvreporter"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <directory>\n", os.Args[0])
		os.Exit(1)
	}
	directory := os.Args[1]
	if info, err := os.Stat(directory); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "ERROR: %s is not a directory\n", directory)
		os.Exit(1)
	}

	registry := appmetrics.DefaultRegistry

	work, err := registry.Measured("worker.latency", appmetrics.UniformReservoir(0), doWork)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	counted, err := registry.Counted("worker.throughput", appmetrics.DefaultTickInterval, func() {})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := registry.Tag("worker.latency", "worker"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := registry.Tag("worker.throughput", "worker"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reporter := appmetrics.NewReporter()
	tag := "worker"
	reporter.Register(registry, appmetrics.FixedInterval(2*time.Second), &tag, csvreporter.New(directory).Callback())
	defer reporter.Shutdown()

	fmt.Println("Hit CTRL-C to stop the process")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		for {
			work()
			counted()
		}
	}()
	<-sig
}

func doWork() {
	time.Sleep(time.Duration(rand.Float64() * float64(100*time.Millisecond)))
}
