package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/thinker-go/application"
	"github.com/felixgeelhaar/thinker-go/domain/action"
	"github.com/felixgeelhaar/thinker-go/domain/scorer"
	"github.com/felixgeelhaar/thinker-go/domain/thinker"
	"github.com/felixgeelhaar/thinker-go/domain/world"
	"github.com/felixgeelhaar/thinker-go/infrastructure/config"
)

// runOptions holds options for the run command.
type runOptions struct {
	definitionPath string
	ticks          uint64
	interval       time.Duration
	watch          bool
	verbose        bool
	jsonOutput     bool
}

// newRunCmd creates the run command.
func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the demo creature with a thinker definition",
		Long: `Run a thinker definition against the built-in demo world: a single
creature with thirst, hunger, and fatigue drives that drift upward each
tick. The definition decides what the creature does about them.

Available leaf scorers: thirst, hunger, fatigue.
Available leaf actions: drink, eat, rest, go_to_water, meander.

Examples:
  # Run 50 ticks of a definition
  thinker run -c thirst.yaml --ticks 50

  # Watch the definition file and re-attach on change
  thinker run -c thirst.yaml --ticks 0 --watch --interval 200ms

  # Verbose per-tick trace
  thinker run -c thirst.yaml --ticks 20 -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.definitionPath, "config", "c", "", "Path to definition file (required)")
	cmd.Flags().Uint64Var(&opts.ticks, "ticks", 50, "Number of ticks to run (0 = until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Delay between ticks")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the definition when the file changes")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a per-tick trace")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the run summary as JSON")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// creature is the demo world's single agent: three drives that drift upward
// until an action attends to them.
type creature struct {
	thirst  float64
	hunger  float64
	fatigue float64

	// atWater tracks whether go_to_water has completed.
	atWater bool

	// actions counts completed actions by name.
	actions map[string]int

	current string
}

func newCreature() *creature {
	return &creature{
		thirst:  0.8,
		hunger:  0.4,
		fatigue: 0.1,
		actions: make(map[string]int),
	}
}

// drift raises every drive a little; actions fight the drift.
func (c *creature) drift() {
	c.thirst = clamp01(c.thirst + 0.02)
	c.hunger = clamp01(c.hunger + 0.015)
	c.fatigue = clamp01(c.fatigue + 0.01)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// registry builds the demo leaf kinds around the creature.
func (c *creature) registry() *config.Registry {
	leaf := func(name string, tick func(state world.ActionState) world.ActionState) action.Template {
		return action.Func(func(state world.ActionState, actor world.Handle) world.ActionState {
			c.current = name
			next := tick(state)
			if next.IsSuccess() {
				c.actions[name]++
			}
			return next
		})
	}

	return config.NewRegistry().
		RegisterScorer("thirst", scorer.Func(func(actor world.Handle) float64 { return c.thirst })).
		RegisterScorer("hunger", scorer.Func(func(actor world.Handle) float64 { return c.hunger })).
		RegisterScorer("fatigue", scorer.Func(func(actor world.Handle) float64 { return c.fatigue })).
		RegisterAction("drink", leaf("drink", func(state world.ActionState) world.ActionState {
			if state == world.Cancelled {
				return world.Failure
			}
			if !c.atWater {
				return world.Failure
			}
			c.thirst = clamp01(c.thirst - 0.3)
			if c.thirst <= 0.05 {
				return world.Success
			}
			return world.Executing
		})).
		RegisterAction("go_to_water", leaf("go_to_water", func(state world.ActionState) world.ActionState {
			if state == world.Cancelled {
				return world.Failure
			}
			c.atWater = true
			return world.Success
		})).
		RegisterAction("eat", leaf("eat", func(state world.ActionState) world.ActionState {
			if state == world.Cancelled {
				return world.Failure
			}
			c.hunger = clamp01(c.hunger - 0.25)
			if c.hunger <= 0.05 {
				return world.Success
			}
			return world.Executing
		})).
		RegisterAction("rest", leaf("rest", func(state world.ActionState) world.ActionState {
			if state == world.Cancelled {
				return world.Success
			}
			c.fatigue = clamp01(c.fatigue - 0.2)
			if c.fatigue <= 0.05 {
				return world.Success
			}
			return world.Executing
		})).
		RegisterAction("meander", leaf("meander", func(state world.ActionState) world.ActionState {
			if state == world.Cancelled {
				return world.Success
			}
			c.atWater = false
			return world.Executing
		}))
}

// runDemo executes the demo world with the given options.
func (a *App) runDemo(ctx context.Context, opts *runOptions) error {
	loader := config.NewLoader()
	def, err := loader.LoadFile(opts.definitionPath)
	if err != nil {
		return fmt.Errorf("failed to load definition: %w", err)
	}

	demo := newCreature()
	registry := demo.registry()

	builder, err := config.NewBuilder(def, registry).Build()
	if err != nil {
		return fmt.Errorf("failed to build thinker: %w", err)
	}

	engine, err := application.NewEngineWithOptions()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	agent := engine.SpawnAgent()
	if _, err := engine.Attach(agent, builder); err != nil {
		return fmt.Errorf("failed to attach thinker: %w", err)
	}

	// With --watch, definition changes re-attach a freshly built thinker.
	reloads := make(chan *thinkerReload, 1)
	if opts.watch {
		watcher, err := config.NewWatcher(opts.definitionPath, loader, func(def *config.Definition, err error) {
			if err != nil {
				select {
				case reloads <- &thinkerReload{err: err}:
				default:
				}
				return
			}
			builder, err := config.NewBuilder(def, registry).Build()
			select {
			case reloads <- &thinkerReload{builder: builder, err: err}:
			default:
			}
		})
		if err != nil {
			return fmt.Errorf("failed to watch definition: %w", err)
		}
		defer watcher.Close()
	}

	start := time.Now()
	var ticks uint64
	for opts.ticks == 0 || ticks < opts.ticks {
		select {
		case <-ctx.Done():
			return a.summarize(opts, demo, ticks, time.Since(start))
		case reload := <-reloads:
			if reload.err != nil {
				fmt.Fprintf(a.stderr, "reload failed, keeping previous definition: %v\n", reload.err)
				break
			}
			if _, err := engine.Attach(agent, reload.builder); err != nil {
				return fmt.Errorf("failed to re-attach thinker: %w", err)
			}
			if opts.verbose {
				fmt.Fprintf(a.stdout, "definition reloaded\n")
			}
		default:
		}

		if err := engine.Step(ctx); err != nil {
			return err
		}
		demo.drift()
		ticks++

		if opts.verbose {
			fmt.Fprintf(a.stdout, "tick %3d  thirst=%.2f hunger=%.2f fatigue=%.2f  doing=%s\n",
				ticks, demo.thirst, demo.hunger, demo.fatigue, demo.current)
		}

		if opts.interval > 0 {
			select {
			case <-ctx.Done():
				return a.summarize(opts, demo, ticks, time.Since(start))
			case <-time.After(opts.interval):
			}
		}
	}

	return a.summarize(opts, demo, ticks, time.Since(start))
}

// thinkerReload carries a watcher result into the run loop.
type thinkerReload struct {
	builder *thinker.Builder
	err     error
}

// summarize prints the run summary.
func (a *App) summarize(opts *runOptions, demo *creature, ticks uint64, duration time.Duration) error {
	if opts.jsonOutput {
		output := map[string]any{
			"ticks":    ticks,
			"duration": duration.String(),
			"drives": map[string]float64{
				"thirst":  demo.thirst,
				"hunger":  demo.hunger,
				"fatigue": demo.fatigue,
			},
			"actions": demo.actions,
		}
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	fmt.Fprintf(a.stdout, "Run completed\n")
	fmt.Fprintf(a.stdout, "  Ticks: %d\n", ticks)
	fmt.Fprintf(a.stdout, "  Duration: %s\n", duration)
	fmt.Fprintf(a.stdout, "  Drives: thirst=%.2f hunger=%.2f fatigue=%.2f\n",
		demo.thirst, demo.hunger, demo.fatigue)
	if len(demo.actions) > 0 {
		fmt.Fprintf(a.stdout, "  Completed actions:\n")
		for name, count := range demo.actions {
			fmt.Fprintf(a.stdout, "    - %s: %d\n", name, count)
		}
	}
	return nil
}
