package main

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"squadsync/config"
	"squadsync/coordination"
	"squadsync/log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// stopItem is the poison pill that tells a worker to exit once the
// producers are finished.
const stopItem = "__stop__"

var (
	version = "1.0.0"

	producersFlag int
	workersFlag   int
	itemsFlag     int
	capacityFlag  int
	permitsFlag   int

	rootCmd = &cobra.Command{
		Use:   "squadsync",
		Short: "squadsync - coordination primitives for worker daemons",
		Long: "squadsync runs a producer/consumer simulation that composes the library's\n" +
			"three primitives: a bounded queue for handoff with backpressure, a\n" +
			"semaphore gating how many workers process at once, and a mutex\n" +
			"serializing the shared tally.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			// Flags override config only when set explicitly.
			if cmd.Flags().Changed("producers") {
				cfg.Producers = producersFlag
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workersFlag
			}
			if cmd.Flags().Changed("items") {
				cfg.Items = itemsFlag
			}
			if cmd.Flags().Changed("capacity") {
				cfg.QueueCapacity = capacityFlag
			}
			if cmd.Flags().Changed("permits") {
				cfg.Permits = permitsFlag
			}

			return runSimulation(cfg)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of squadsync",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("squadsync version %s\n", version)
		},
	}
)

func runSimulation(cfg *config.Config) error {
	queue, err := coordination.NewBoundedQueue[string](cfg.QueueCapacity)
	if err != nil {
		return fmt.Errorf("failed to create queue: %w", err)
	}
	sem, err := coordination.NewSemaphore(cfg.Permits)
	if err != nil {
		return fmt.Errorf("failed to create semaphore: %w", err)
	}
	tally := coordination.NewMutex()
	perWorker := make(map[int]int, cfg.Workers)

	// Stream queue transitions to the debug log, rate limited so a busy
	// simulation doesn't flood the file.
	every := log.NewEvery(250 * time.Millisecond)
	token := queue.Listen(func(ev coordination.QueueEvent[string]) {
		if ev.Type == coordination.EventDraining || ev.Type == coordination.EventDrained || every.ShouldLog() {
			log.DebugLog.Printf("queue event: %s (%d items)", ev.Type, len(ev.Items))
		}
	})
	defer queue.StopListening(token)

	retry := time.Duration(cfg.RetryIntervalMs) * time.Millisecond
	var retries atomic.Int64

	start := time.Now()

	var producers errgroup.Group
	for p := 0; p < cfg.Producers; p++ {
		p := p
		producers.Go(func() error {
			for i := 0; i < cfg.Items; i++ {
				item := fmt.Sprintf("p%d-item%d", p, i)
				for {
					err := queue.Enqueue(item)
					if errors.Is(err, coordination.ErrQueueFull) {
						// Backpressure: wait for the workers to catch up.
						retries.Add(1)
						time.Sleep(retry)
						continue
					}
					if err != nil {
						return fmt.Errorf("producer %d: %w", p, err)
					}
					break
				}
			}
			return nil
		})
	}

	var workers errgroup.Group
	for w := 0; w < cfg.Workers; w++ {
		w := w
		workers.Go(func() error {
			for {
				item := queue.Dequeue()
				if item == stopItem {
					return nil
				}

				sem.Acquire()
				// Stand-in for real work.
				time.Sleep(time.Millisecond)
				sem.Release()

				tally.Lock()
				perWorker[w]++
				if err := tally.Unlock(); err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
			}
		})
	}

	if err := producers.Wait(); err != nil {
		return err
	}

	// One pill per worker; each Dequeue consumes exactly one.
	for w := 0; w < cfg.Workers; w++ {
		for {
			err := queue.Enqueue(stopItem)
			if errors.Is(err, coordination.ErrQueueFull) {
				time.Sleep(retry)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to stop workers: %w", err)
			}
			break
		}
	}

	if err := workers.Wait(); err != nil {
		return err
	}

	queue.Drain()
	elapsed := time.Since(start)

	total := 0
	for w := 0; w < cfg.Workers; w++ {
		if n := perWorker[w]; n > 0 {
			fmt.Printf("worker %d processed %d items\n", w, n)
			total += n
		}
	}
	fmt.Printf("processed %d items in %v (%d producer retries, %d left buffered)\n",
		total, elapsed.Round(time.Millisecond), retries.Load(), queue.Size())
	log.InfoLog.Printf("simulation complete: %d items, %v", total, elapsed)

	if want := cfg.Producers * cfg.Items; total != want {
		return fmt.Errorf("processed %d items, expected %d", total, want)
	}
	return nil
}

func init() {
	rootCmd.Flags().IntVar(&producersFlag, "producers", 0, "Number of producer goroutines")
	rootCmd.Flags().IntVar(&workersFlag, "workers", 0, "Number of worker goroutines")
	rootCmd.Flags().IntVar(&itemsFlag, "items", 0, "Items enqueued per producer")
	rootCmd.Flags().IntVar(&capacityFlag, "capacity", 0, "Work queue capacity")
	rootCmd.Flags().IntVar(&permitsFlag, "permits", 0, "Concurrent processing permits")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}
