package perf

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/t38/cmd/util"
	"github.com/ValentinKolb/t38/rpc/client"
	"github.com/ValentinKolb/t38/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	rpcClient *client.Client

	// PerfCmd runs the benchmarks against a server
	PerfCmd = &cobra.Command{
		Use:   "perf",
		Short: "Performance testing tool for geospatial servers",
		Long: `Runs parallel benchmarks against the server and prints the time per operation,
the throughput and the latency percentiles of every benchmark. The benchmarks only
touch the collection given by --collection, which is dropped afterwards.`,
		Args:     cobra.NoArgs,
		PreRunE:  processPerfConfig,
		RunE:     run,
		PostRunE: closePerfClient,
	}
	perfCollection = "__t38perf"
	perfNumThreads = 10
	perfKeySpread  = 100
	perfSkip       = make([]string, 0)
)

// percentiles reported for every benchmark
var percentiles = []float64{0.5, 0.95, 0.99}

// benchmark is a single named workload. op runs one operation for worker index i.
type benchmark struct {
	name    string
	prepare func(ctx context.Context, ids func(int) string, iter func(func(string)))
	op      func(ctx context.Context, id string, i int) error
}

// result holds the outcome of one benchmark
type result struct {
	name    string
	bench   testing.BenchmarkResult
	latency gometrics.Timer
	errors  int64
}

func init() {
	// add flags
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per CPU to use for the benchmark"))
	key = "keys"
	PerfCmd.Flags().Int(key, 100, util.WrapString("How many different object ids to use for the tests"))
	key = "collection"
	PerfCmd.Flags().String(key, "__t38perf", util.WrapString("Collection the benchmarks write to"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if rpcClient, err = util.NewClient(cmd); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfCollection = viper.GetString("collection")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func closePerfClient(_ *cobra.Command, _ []string) error {
	if rpcClient == nil {
		return nil
	}
	return rpcClient.Close()
}

func run(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	config := util.GetClientConfig()

	fmt.Println("Performance testing tool for geospatial servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Transport: %s\n", viper.GetString("transport"))
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Collection: %s\n", perfCollection)
	fmt.Println()

	fmt.Println("starting tests...")

	results := make([]result, 0, len(benchmarks()))
	for _, b := range benchmarks() {
		res := runBenchmark(ctx, b)
		results = append(results, res)
		printResult(os.Stdout, res)
	}

	// cleanup
	if err := rpcClient.Drop(ctx, perfCollection); err != nil {
		log.Printf("error dropping %s: %v\n", perfCollection, err)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		file, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %v", err)
		}
		defer file.Close()
		if err := writeResultsToCSV(file, results, config); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// benchmarks returns all workloads in the order they run
func benchmarks() []benchmark {
	setAll := func(ctx context.Context, _ func(int) string, iter func(func(string))) {
		iter(func(id string) {
			if err := rpcClient.Set(ctx, perfCollection, id, common.PointLocation(33.5123, -112.2693), nil); err != nil {
				log.Printf("error setting %s: %v\n", id, err)
			}
		})
	}

	return []benchmark{
		{
			name: "ping",
			op: func(ctx context.Context, _ string, _ int) error {
				_, err := rpcClient.Ping(ctx)
				return err
			},
		},
		{
			name: "set",
			op: func(ctx context.Context, id string, i int) error {
				lat, lng := spread(i)
				return rpcClient.Set(ctx, perfCollection, id, common.PointLocation(lat, lng), nil)
			},
		},
		{
			name: "set-fields",
			op: func(ctx context.Context, id string, i int) error {
				lat, lng := spread(i)
				return rpcClient.Set(ctx, perfCollection, id, common.PointLocation(lat, lng), &common.SetOptions{
					Fields: []common.Field{{Name: "speed", Value: float64(i % 120)}, {Name: "heading", Value: float64(i % 360)}},
				})
			},
		},
		{
			name:    "get",
			prepare: setAll,
			op: func(ctx context.Context, id string, _ int) error {
				_, err := rpcClient.Get(ctx, perfCollection, id, nil)
				return err
			},
		},
		{
			name:    "get-point",
			prepare: setAll,
			op: func(ctx context.Context, id string, _ int) error {
				_, err := rpcClient.GetPoint(ctx, perfCollection, id)
				return err
			},
		},
		{
			name:    "mixed",
			prepare: setAll,
			op: func(ctx context.Context, id string, i int) error {
				var err error
				switch i % 4 {
				case 0: // set
					lat, lng := spread(i)
					err = rpcClient.Set(ctx, perfCollection, id, common.PointLocation(lat, lng), nil)
				case 1: // get
					_, err = rpcClient.Get(ctx, perfCollection, id, nil)
				case 2: // fset
					err = rpcClient.FSet(ctx, perfCollection, id, "speed", float64(i%120))
				case 3: // ttl
					_, err = rpcClient.TTL(ctx, perfCollection, id)
				}
				return err
			},
		},
	}
}

// runBenchmark runs a single workload with testing.Benchmark and records the latency of every operation
func runBenchmark(ctx context.Context, b benchmark) result {
	res := result{name: b.name, latency: gometrics.NewTimer()}
	defer res.latency.Stop()

	if shouldSkip(b.name) {
		return res
	}

	errCount := xsync.NewCounter()
	getID, iter := getKeys(b.name)
	if b.prepare != nil {
		b.prepare(ctx, getID, iter)
	}

	res.bench = testing.Benchmark(func(tb *testing.B) {
		tb.SetParallelism(perfNumThreads)
		tb.ResetTimer()

		tb.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				err := b.op(ctx, getID(counter), counter)
				res.latency.UpdateSince(start)
				if err != nil {
					// only the first errors are logged, the rest is counted
					if errCount.Value() < 10 {
						log.Printf("(%s) - error: %v\n", b.name, err)
					}
					errCount.Inc()
				}
				counter++
			}
		})
	})

	res.errors = errCount.Value()
	return res
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// creates an array of object ids and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	ids := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i)
	}

	// Function to get an id by index (with wraparound)
	getID := func(i int) string {
		return ids[i%perfKeySpread]
	}

	// Function to iterate over all ids and apply a function to each
	iterateIDs := func(fn func(string)) {
		for _, id := range ids {
			fn(id)
		}
	}

	return getID, iterateIDs
}

// spread maps a counter to a point inside the valid lat/lng range
func spread(i int) (lat, lng float64) {
	return float64(i%180) - 89.5, float64((i*7)%360) - 179.5
}

// nsPerOp returns the time per operation and the operations per second of a result
func nsPerOp(res result) (float64, float64) {
	if res.bench.NsPerOp() == 0 {
		return 0, 0
	}
	ns := math.Max(float64(res.bench.NsPerOp()), 1) // prevent division by zero
	return ns, 1.0 / (ns / 1e9)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(w io.Writer, res result) {
	ns, opsPerSec := nsPerOp(res)
	if ns == 0 {
		fmt.Fprintf(w, "%-20sskipped\n", res.name)
		return
	}

	ps := res.latency.Snapshot().Percentiles(percentiles)
	fmt.Fprintf(w, "%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\terrors=%d\n",
		res.name, ns, time.Duration(ns), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]), res.errors)
}

// writeResultsToCSV writes benchmark results as CSV
func writeResultsToCSV(w io.Writer, results []result, config common.ClientConfig) error {
	writer := csv.NewWriter(w)

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P95Ns", "P99Ns", "Errors", "Skipped",
		"Endpoint", "TimeoutSec", "Transport", "Threads", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, res := range results {
		ns, opsPerSec := nsPerOp(res)
		skipped := strconv.FormatBool(ns == 0)
		ps := res.latency.Snapshot().Percentiles(percentiles)

		row := []string{
			res.name,
			fmt.Sprintf("%.0f", ns),
			time.Duration(ns).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			strconv.FormatInt(res.errors, 10),
			skipped,
			config.Endpoint(),
			strconv.Itoa(config.TimeoutSecond),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", res.name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
