package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/output"
	"github.com/microfin/loanval/snapshot"
	"github.com/microfin/loanval/telemetry"
	"github.com/microfin/loanval/validation"
	"github.com/microfin/loanval/validator"
)

type CheckCmd struct {
	Request FileOrStdin `help:"Loan application request JSON (use '-' for stdin, or omit for stdin)." arg:"" optional:""`

	Product string `help:"Loan product snapshot JSON." type:"existingfile" required:""`
	Loan    string `help:"Persisted loan snapshot JSON, required for modify, approve and disburse." type:"existingfile"`
	Env     string `help:"Environment snapshot JSON with clients, groups, calendars and office config." type:"existingfile"`

	Action string `help:"Lifecycle action to validate the request for." enum:"create,modify,approve,reject,withdraw,undo,disburse" default:"create"`
	Watch  bool   `help:"Re-validate whenever the request file changes."`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.Request.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.Request.Filename)))

		defer reportTelemetry()
	}

	productSnap, err := snapshot.LoadProduct(cmd.Product)
	if err != nil {
		return fmt.Errorf("failed to load product snapshot: %w", err)
	}
	product := productSnap.ToDomain()

	var envSnap *snapshot.Environment
	if cmd.Env != "" {
		envSnap, err = snapshot.LoadEnvironment(cmd.Env)
		if err != nil {
			return fmt.Errorf("failed to load environment snapshot: %w", err)
		}
	}
	store, err := snapshot.NewStore(envSnap)
	if err != nil {
		return fmt.Errorf("failed to load environment snapshot: %w", err)
	}

	var loan *domain.Loan
	if cmd.Loan != "" {
		loanSnap, err := snapshot.LoadLoan(cmd.Loan)
		if err != nil {
			return fmt.Errorf("failed to load loan snapshot: %w", err)
		}
		loan = loanSnap.ToDomain(product, store)
	} else if cmd.needsLoan() {
		return fmt.Errorf("action %s requires a loan snapshot (--loan)", cmd.Action)
	}

	v := store.Validator()

	if cmd.Watch {
		if cmd.Request.IsStdin() {
			return stdErrors.New("watch mode requires a request file, not stdin")
		}
		return cmd.watch(runCtx, ctx, v, product, loan)
	}

	if ok := cmd.runOnce(runCtx, ctx, v, product, loan); !ok {
		reportTelemetry()
		return NewCommandError(1)
	}

	return nil
}

// needsLoan reports whether the action runs against a persisted loan.
func (cmd *CheckCmd) needsLoan() bool {
	switch cmd.Action {
	case "modify", "approve", "disburse":
		return true
	}
	return false
}

// runOnce validates the request once and renders the outcome. It reports
// whether the request passed.
func (cmd *CheckCmd) runOnce(runCtx context.Context, ctx *kong.Context, v *validator.Validator, product *domain.LoanProduct, loan *domain.Loan) bool {
	contents, err := cmd.Request.GetContents()
	if err != nil {
		printError(ctx.Stderr, fmt.Sprintf("failed to read request: %v", err))
		return false
	}

	doc, err := document.Parse(contents)
	if err == nil {
		err = cmd.dispatch(runCtx, v, doc, product, loan)
	}
	if err != nil {
		renderer := NewErrorRenderer()
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))

		_, _ = fmt.Fprintln(ctx.Stderr)

		var validationErrors *validation.Errors
		if stdErrors.As(err, &validationErrors) {
			printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(validationErrors.Errors)))
		} else {
			printError(ctx.Stderr, fmt.Sprintf("%s rejected", cmd.Action))
		}

		return false
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Validation passed for %s", cmd.Action))

	return true
}

func (cmd *CheckCmd) dispatch(runCtx context.Context, v *validator.Validator, doc *document.Document, product *domain.LoanProduct, loan *domain.Loan) error {
	switch cmd.Action {
	case "create":
		return v.ValidateForCreate(runCtx, doc, product)
	case "modify":
		return v.ValidateForModify(runCtx, doc, product, loan)
	case "approve":
		return v.ValidateApproval(runCtx, doc, loan)
	case "reject":
		return v.ValidateRejection(runCtx, doc)
	case "withdraw":
		return v.ValidateWithdrawal(runCtx, doc)
	case "undo":
		return v.ValidateUndo(runCtx, doc)
	case "disburse":
		return v.ValidateDisbursement(runCtx, doc, loan)
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}

// watch re-validates the request whenever its file changes, until
// interrupted.
func (cmd *CheckCmd) watch(runCtx context.Context, ctx *kong.Context, v *validator.Validator, product *domain.LoanProduct, loan *domain.Loan) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file itself; editors replace
	// files on save, which drops a watch on the file's inode.
	absFilename := cmd.Request.GetAbsoluteFilename()
	if err := watcher.Add(filepath.Dir(absFilename)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absFilename, err)
	}

	sigCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	printInfof(ctx.Stdout, "watching %s", pathStyle.Render(absFilename))
	cmd.runOnce(runCtx, ctx, v, product, loan)

	// Debounce timer - editors often write files in multiple steps
	const debounceDelay = 100 * time.Millisecond

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-sigCtx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != absFilename {
				continue
			}

			// React to write/create/remove/rename events
			// (Remove/Rename are common in atomic saves)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(debounceDelay, func() {
				_, _ = fmt.Fprintln(ctx.Stdout)
				cmd.runOnce(runCtx, ctx, v, product, loan)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}
