package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/filament-ui/filament/pkg/reactive"
)

func benchCmd() *cobra.Command {
	var (
		writes int
		depth  int
		width  int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure propagation throughput",
		Long: `Run canonical graph shapes and report propagation throughput.

Shapes:
  chain    one signal feeding a linear chain of memos
  fanout   one signal fanned out to independent memos with one effect each
  diamond  one signal split across parallel memos rejoined by one memo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reactive.InitSynchronous(); err != nil {
				return fmt.Errorf("install executor: %w", err)
			}
			defer reactive.ReleaseRuntime()

			benchChain(writes, depth)
			benchFanout(writes, width)
			benchDiamond(writes, width)

			stats := reactive.CurrentRuntime().Stats()
			fmt.Println()
			fmt.Printf("  writes=%d recomputes=%d effect runs=%d flushes=%d\n",
				stats.SignalWrites, stats.MemoRecomputes, stats.EffectRuns, stats.BatchFlushes)
			return nil
		},
	}

	cmd.Flags().IntVarP(&writes, "writes", "n", 100_000, "Writes per shape")
	cmd.Flags().IntVarP(&depth, "depth", "d", 32, "Chain depth")
	cmd.Flags().IntVarP(&width, "width", "w", 32, "Fanout/diamond width")

	return cmd
}

func report(name string, writes int, elapsed time.Duration) {
	perSec := float64(writes) / elapsed.Seconds()
	fmt.Printf("  %-8s %8d writes in %10s  %12.0f writes/s\n", name, writes, elapsed.Round(time.Microsecond), perSec)
}

func benchChain(writes, depth int) {
	reactive.Root(func(dispose func()) {
		defer dispose()

		read, write := reactive.NewSignal(0)
		last := reactive.NewMemo(func(prev *int) int { return read.Get() + 1 })
		for i := 1; i < depth; i++ {
			up := last
			last = reactive.NewMemo(func(prev *int) int { return up.Get() + 1 })
		}
		reactive.NewEffect(func() reactive.Cleanup {
			_ = last.Get()
			return nil
		})

		start := time.Now()
		for i := 1; i <= writes; i++ {
			write.Set(i)
		}
		report("chain", writes, time.Since(start))
	})
}

func benchFanout(writes, width int) {
	reactive.Root(func(dispose func()) {
		defer dispose()

		read, write := reactive.NewSignal(0)
		for i := 0; i < width; i++ {
			scale := i + 1
			m := reactive.NewMemo(func(prev *int) int { return read.Get() * scale })
			reactive.NewEffect(func() reactive.Cleanup {
				_ = m.Get()
				return nil
			})
		}

		start := time.Now()
		for i := 1; i <= writes; i++ {
			write.Set(i)
		}
		report("fanout", writes, time.Since(start))
	})
}

func benchDiamond(writes, width int) {
	reactive.Root(func(dispose func()) {
		defer dispose()

		read, write := reactive.NewSignal(0)
		arms := make([]reactive.Memo[int], width)
		for i := 0; i < width; i++ {
			scale := i + 1
			arms[i] = reactive.NewMemo(func(prev *int) int { return read.Get() * scale })
		}
		join := reactive.NewMemo(func(prev *int) int {
			sum := 0
			for _, arm := range arms {
				sum += arm.Get()
			}
			return sum
		})
		reactive.NewEffect(func() reactive.Cleanup {
			_ = join.Get()
			return nil
		})

		start := time.Now()
		for i := 1; i <= writes; i++ {
			write.Set(i)
		}
		report("diamond", writes, time.Since(start))
	})
}
