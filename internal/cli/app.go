package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"memory-quiz/internal/fqz"
	"memory-quiz/internal/quiz"
)

const defaultExportFile = "memory-quiz.fqz"

type Config struct {
	TimeLimitSeconds int
	TickInterval     time.Duration
	RevealDelay      time.Duration
	DeckFile         string
}

// Run serves the interactive command loop until exit, end of input or ctx is done.
func Run(ctx context.Context, in io.Reader, out io.Writer, svc *quiz.Service, cfg Config) error {
	if cfg.TimeLimitSeconds > 0 {
		svc.SetTimeLimit(cfg.TimeLimitSeconds)
	}

	lines := newLineReader(in)
	defer lines.stop()

	fmt.Fprintf(out, "memory-quiz\nitems=%d time-limit=%ds\n\n", svc.Len(), svc.TimeLimit())
	if cfg.DeckFile != "" {
		runImport(ctx, out, svc, cfg.DeckFile, false)
	}
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := lines.next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		err = nil
		switch command {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "list":
			runList(out, svc)
		case "show":
			index, parseErr := parseItemNumber(args, "show <n>")
			if parseErr != nil {
				fmt.Fprintln(out, parseErr)
				continue
			}
			err = runShow(out, svc, index)
		case "add":
			err = runAdd(ctx, lines, out, svc)
		case "edit":
			index, parseErr := parseItemNumber(args, "edit <n>")
			if parseErr != nil {
				fmt.Fprintln(out, parseErr)
				continue
			}
			err = runEdit(ctx, lines, out, svc, index)
		case "delete":
			index, parseErr := parseItemNumber(args, "delete <n>")
			if parseErr != nil {
				fmt.Fprintln(out, parseErr)
				continue
			}
			err = runDelete(ctx, lines, out, svc, index)
		case "import", "tierlist":
			path := commandArg(line, args[0])
			if path == "" {
				fmt.Fprintf(out, "usage: %s <file>\n", command)
				continue
			}
			runImport(ctx, out, svc, path, command == "tierlist")
		case "export":
			path := commandArg(line, args[0])
			if path == "" {
				path = defaultExportFile
			}
			err = runExport(out, svc, path)
		case "time":
			runTime(out, svc, args)
		case "play":
			err = runPlay(ctx, lines, out, svc, cfg)
		case "history":
			limit, parseErr := parsePositiveLimit(args, 1, defaultHistoryLimit)
			if parseErr != nil {
				fmt.Fprintf(out, "invalid history limit: %v\n", parseErr)
				continue
			}
			err = runHistory(ctx, out, svc, limit)
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, quiz.ErrInputClosed):
			fmt.Fprintln(out)
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			glog.Errorf("%s: %v", command, err)
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func runList(out io.Writer, svc *quiz.Service) {
	items := svc.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "No questions yet. Use 'add' to get started.")
		return
	}
	fmt.Fprintf(out, "Deck (%d items):\n", len(items))
	for idx, item := range items {
		printItemSummary(out, idx+1, item)
	}
}

func runShow(out io.Writer, svc *quiz.Service, index int) error {
	item, err := svc.Item(index)
	if err != nil {
		return err
	}
	printItemDetail(out, index+1, item)
	return nil
}

func runAdd(ctx context.Context, lines *lineReader, out io.Writer, svc *quiz.Service) error {
	input, err := promptForm(ctx, lines, out, nil)
	if err != nil {
		return err
	}
	item, err := svc.AddItem(ctx, input)
	if errors.Is(err, quiz.ErrEmptyAnswerSet) {
		fmt.Fprintln(out, "Please enter at least one correct answer")
		return nil
	}
	if err != nil {
		return err
	}
	printMismatches(out, item)
	fmt.Fprintf(out, "Added item %d.\n", svc.Len())
	return nil
}

func runEdit(ctx context.Context, lines *lineReader, out io.Writer, svc *quiz.Service, index int) error {
	existing, err := svc.Item(index)
	if err != nil {
		return err
	}
	input, err := promptForm(ctx, lines, out, &existing)
	if err != nil {
		return err
	}
	item, err := svc.UpdateItem(ctx, index, input)
	if errors.Is(err, quiz.ErrEmptyAnswerSet) {
		fmt.Fprintln(out, "Please enter at least one correct answer")
		return nil
	}
	if err != nil {
		return err
	}
	printMismatches(out, item)
	fmt.Fprintf(out, "Updated item %d.\n", index+1)
	return nil
}

func runDelete(ctx context.Context, lines *lineReader, out io.Writer, svc *quiz.Service, index int) error {
	if _, err := svc.Item(index); err != nil {
		return err
	}
	confirmed, err := promptYesNo(ctx, lines, out, "Delete this item? (yes/no): ")
	if err != nil || !confirmed {
		return err
	}
	if err := svc.DeleteItem(ctx, index); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted item %d.\n", index+1)
	return nil
}

// runImport reports failures to the user rather than returning them, so a bad file
// never ends the session.
func runImport(ctx context.Context, out io.Writer, svc *quiz.Service, path string, tierlistOnly bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "Error importing file: %v\n", err)
		return
	}

	var batch quiz.ImportBatch
	if tierlistOnly {
		batch, err = svc.ImportTierlist(ctx, data)
	} else {
		batch, err = svc.Import(ctx, data)
	}
	switch {
	case errors.Is(err, fqz.ErrInvalidFormat):
		fmt.Fprintln(out, "Invalid file format")
		return
	case err != nil && tierlistOnly:
		fmt.Fprintf(out, "Error importing tierlist: %v\n", err)
		return
	case err != nil:
		fmt.Fprintf(out, "Error importing file: %v\n", err)
		return
	}

	if batch.Format == fqz.FormatTierlist {
		fmt.Fprintf(out, "Tierlist imported successfully! %d items added", len(batch.Items))
		if batch.Placeholders > 0 {
			fmt.Fprintf(out, ", %d images could not be loaded", batch.Placeholders)
		}
		fmt.Fprintln(out, ".")
		return
	}
	fmt.Fprintf(out, "Data imported successfully! Deck now has %d items.\n", svc.Len())
}

func runExport(out io.Writer, svc *quiz.Service, path string) error {
	data, err := svc.Export()
	if errors.Is(err, quiz.ErrEmptyDeck) {
		fmt.Fprintln(out, "No data to save")
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %d items to %s\n", svc.Len(), path)
	return nil
}

func runTime(out io.Writer, svc *quiz.Service, args []string) {
	if len(args) < 2 {
		fmt.Fprintf(out, "Time limit: %d seconds per question\n", svc.TimeLimit())
		return
	}
	seconds, err := strconv.Atoi(args[1])
	if err != nil || seconds <= 0 {
		fmt.Fprintln(out, "invalid time limit: must be a positive integer")
		return
	}
	svc.SetTimeLimit(seconds)
	fmt.Fprintf(out, "Time limit set to %d seconds per question\n", seconds)
}
