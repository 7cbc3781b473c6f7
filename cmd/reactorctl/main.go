// Command reactorctl is a small demonstration CLI exercising the reactor
// library's factories and operators against a real goroutine scheduler.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/flowkit-go/reactor"
	"github.com/flowkit-go/reactor/schedulers"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reactorctl",
	Short: "Drive reactor signals from the command line",
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Emit a counting sequence on an interval and print each value",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		interval, _ := cmd.Flags().GetDuration("interval")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		sched := schedulers.NewGoroutine()
		n := 0
		it := reactor.FuncIterator(func() (int, bool) {
			if n >= count {
				return 0, false
			}
			n++
			return n, true
		})

		source := reactor.SequenceInterval[int, error](it, interval, sched)
		if debounce > 0 {
			source = reactor.Debounce[int, error](source, debounce, sched)
		}

		done := make(chan struct{})
		source.ObserveSink(
			func(v int) { fmt.Printf("tick %d\n", v) },
			func(err *error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "failed: %v\n", *err)
				}
				close(done)
			},
		)
		<-done
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Demonstrate ref-counted sharing across two subscribers",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		sched := schedulers.NewGoroutine()

		n := 0
		it := reactor.FuncIterator(func() (int, bool) {
			if n >= 5 {
				return 0, false
			}
			n++
			return n, true
		})
		shared := reactor.Share[int, error](reactor.SequenceInterval[int, error](it, interval, sched))

		doneA := make(chan struct{})
		doneB := make(chan struct{})
		subA := shared.Observe(func(ev reactor.Event[int, error]) {
			if v, ok := ev.Value(); ok {
				fmt.Printf("subscriber A saw %d\n", v)
				return
			}
			close(doneA)
		})
		time.Sleep(interval / 2)
		subB := shared.Observe(func(ev reactor.Event[int, error]) {
			if v, ok := ev.Value(); ok {
				fmt.Printf("subscriber B saw %d\n", v)
				return
			}
			close(doneB)
		})

		<-doneA
		<-doneB
		subA.Dispose()
		subB.Dispose()
		return nil
	},
}

func init() {
	tickCmd.Flags().Int("count", 5, "number of ticks to emit")
	tickCmd.Flags().Duration("interval", 200*time.Millisecond, "delay between ticks")
	tickCmd.Flags().Duration("debounce", 0, "debounce window applied to the tick sequence (0 disables)")

	shareCmd.Flags().Duration("interval", 200*time.Millisecond, "delay between ticks")

	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(shareCmd)
}
