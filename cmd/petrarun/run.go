package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/myrjola/petrarun/internal/errors"
	"github.com/myrjola/petrarun/internal/i18n"
	"github.com/myrjola/petrarun/internal/sqlite"
	"github.com/myrjola/petrarun/internal/workout"
	"github.com/spf13/cobra"
)

type runOptions struct {
	*rootOptions
	sqliteURL    string
	tickInterval time.Duration
	language     string
}

// commands maps what the user types to engine operations. Several spellings share an operation.
//
//nolint:gochecknoglobals // lookup table.
var commands = map[string]func(*workout.Engine) error{
	"start":     (*workout.Engine).Start,
	"pause":     (*workout.Engine).Pause,
	"p":         (*workout.Engine).Pause,
	"resume":    (*workout.Engine).Resume,
	"rep":       (*workout.Engine).IncrementRep,
	"r":         (*workout.Engine).IncrementRep,
	"set":       (*workout.Engine).CompleteSet,
	"s":         (*workout.Engine).CompleteSet,
	"skip":      (*workout.Engine).SkipCurrentSet,
	"skip-rest": (*workout.Engine).SkipRest,
	"n":         (*workout.Engine).SkipRest,
	"complete":  (*workout.Engine).CompleteWorkout,
	"done":      (*workout.Engine).CompleteWorkout,
}

const helpText = `Commands:
  start            start the workout
  rep, r           count one rep
  set, s           finish the set with the reps so far
  skip             skip the current set
  skip-rest, n     end the rest now
  pause, p         pause
  resume           resume
  complete, done   finish the workout early
  status           show progress
  quit, q          abandon the workout
`

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: rootOpts, sqliteURL: "", tickInterval: time.Second, language: "en"}

	cmd := &cobra.Command{ //nolint:exhaustruct // defaults.
		Use:   "run <plan.yaml>",
		Short: "Run a workout plan, reading commands from stdin",
		Long: `Run a workout plan in the terminal.

Commands are read line by line from stdin and progress is printed after every change.
With --sqlite the completed workout is stored in the same database the web app uses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkout(cmd.Context(), opts, args[0], cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.sqliteURL, "sqlite", "", "SQLite database to store the completion in")
	cmd.Flags().DurationVar(&opts.tickInterval, "tick", time.Second, "length of one countdown second")
	cmd.Flags().StringVar(&opts.language, "language", "en", "language of the motivational messages (en|fi)")

	return cmd
}

// workoutRun is the engine a run drives plus what it takes to tear it down.
type workoutRun struct {
	engine *workout.Engine
	// service is set when completions are stored.
	service *workout.Service
	id      string
	close   func()
}

func startWorkout(ctx context.Context, opts *runOptions, plan workout.Plan, logger *slog.Logger) (*workoutRun, error) {
	language := i18n.Language(opts.language)
	if !i18n.IsSupported(language) {
		return nil, errors.New("unsupported language", slog.String("language", opts.language))
	}
	motivation := func(c workout.Category) string {
		return i18n.Motivate(language, string(c))
	}

	if opts.sqliteURL == "" {
		engine := workout.NewEngine(workout.EngineConfig{
			Clock:        opts.clock,
			Logger:       logger,
			TickInterval: opts.tickInterval,
			Prefetcher:   nil,
			Sink:         nil,
			Motivation:   motivation,
		})
		if err := engine.Initialize(plan); err != nil {
			return nil, errors.Wrap(err, "initialize engine")
		}
		return &workoutRun{engine: engine, service: nil, id: "", close: engine.Close}, nil
	}

	db, err := sqlite.NewDatabase(ctx, opts.sqliteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open db", slog.String("url", opts.sqliteURL))
	}
	service := workout.NewService(db, logger, workout.ServiceConfig{
		Clock:        opts.clock,
		TickInterval: opts.tickInterval,
		Prefetcher:   nil,
		Motivation:   motivation,
	})
	closeAll := func() {
		service.Close()
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.Background(), slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}
	sess, err := service.StartSessionWithPlan(ctx, plan)
	if err != nil {
		closeAll()
		return nil, errors.Wrap(err, "start session")
	}
	return &workoutRun{engine: sess.Engine, service: service, id: sess.ID, close: closeAll}, nil
}

func runWorkout(ctx context.Context, opts *runOptions, path string, in io.Reader, out, errOut io.Writer) error {
	plan, err := loadPlan(path)
	if err != nil {
		return err
	}
	logger := newLogger(errOut, opts.verbose)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run, err := startWorkout(ctx, opts, plan, logger)
	if err != nil {
		return err
	}
	defer run.close()

	printer := &progressPrinter{mu: sync.Mutex{}, w: out, printed: false, lastVersion: 0, lastMessage: ""}
	unsubscribe := run.engine.Subscribe(printer.print)
	defer unsubscribe()

	printer.printf("%s: %d exercises. Type start to begin, help for commands.\n", plan.Name, len(plan.Exercises))

	completed, err := readCommands(ctx, run.engine, in, printer)
	if err != nil {
		return err
	}
	if !completed {
		printer.printf("Workout abandoned.\n")
		return nil
	}

	data, _ := run.engine.Completion()
	printer.summary(data)
	if run.service != nil {
		run.service.Flush()
		if _, err = run.service.GetCompletion(ctx, run.id); err != nil {
			return errors.Wrap(err, "verify stored completion")
		}
		printer.printf("Stored completion %s.\n", run.id)
	}
	return nil
}

// readCommands applies commands read from in until the workout completes, the user quits, or in is exhausted.
// It reports whether the workout completed.
func readCommands(ctx context.Context, engine *workout.Engine, in io.Reader, printer *progressPrinter) (bool, error) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	// A countdown can complete the workout while we wait for input.
	done := make(chan struct{})
	var once sync.Once
	unsubscribe := engine.Subscribe(func(s workout.Snapshot) {
		if s.State.Phase == workout.PhaseCompleted {
			once.Do(func() { close(done) })
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return false, nil
		case <-done:
			return true, nil
		case line, ok := <-lines:
			if !ok {
				return false, nil
			}
			switch line {
			case "":
				continue
			case "quit", "q":
				return false, nil
			case "help", "h", "?":
				printer.printf("%s", helpText)
				continue
			case "status":
				printer.status(engine.Snapshot())
				continue
			}
			command, known := commands[line]
			if !known {
				printer.printf("Unknown command %q. Type help for commands.\n", line)
				continue
			}
			if err := command(engine); err != nil {
				if !errors.Is(err, workout.ErrRejected) {
					return false, errors.Wrap(err, "apply command", slog.String("command", line))
				}
				printer.printf("Not now: %v\n", err)
			}
			if _, completed := engine.Completion(); completed {
				return true, nil
			}
		}
	}
}
