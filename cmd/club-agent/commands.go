package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"club-knowledge-api/internal/application/ingestion"
	"club-knowledge-api/internal/application/query"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := agent.Answerer.Answer(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive question loop, type quit or exit to leave",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), agent.Answerer)
		},
	}
}

// runREPL 逐行读取问题直到 quit / exit 或输入结束
func runREPL(ctx context.Context, in io.Reader, out io.Writer, answerer query.Answerer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nAsk a question: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(q) {
		case "quit", "exit":
			return nil
		case "":
			continue
		}

		answer, err := answerer.Answer(ctx, q)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\nAnswer:\n%s\n", answer)
	}
}

func newAddEventCmd() *cobra.Command {
	var in ingestion.Input
	cmd := &cobra.Command{
		Use:   "add-event",
		Short: "Validate, embed and store a new event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := agent.Ingestor.Add(cmd.Context(), in)
			if !res.OK {
				return fmt.Errorf("%s", res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "name of the event")
	f.StringVar(&in.Domain, "domain", "", "event domain, e.g. \"AI / ML\"")
	f.StringVar(&in.Date, "date", "", "date of the event (YYYY-MM-DD)")
	f.StringVar(&in.Description, "description", "", "description and insights")
	f.StringVar(&in.Time, "time", "", "time of the event (HH:MM)")
	f.StringVar(&in.Venue, "venue", "", "venue")
	f.StringVar(&in.Mode, "mode", "", "Online or Offline")
	f.StringVar(&in.RegistrationFee, "fee", "", "registration fee")
	f.StringVar(&in.FacultyCoordinators, "faculty", "", "faculty coordinators")
	f.StringVar(&in.StudentCoordinators, "students", "", "student coordinators")
	f.StringVar(&in.Speakers, "speakers", "", "speakers")
	f.StringVar(&in.Perks, "perks", "", "perks")
	f.StringVar(&in.Collaboration, "collaboration", "", "collaboration")
	for _, name := range []string{"name", "domain", "date", "description"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
