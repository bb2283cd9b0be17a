package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tsawler/chatmood"
)

var explainCmd = &cobra.Command{
	Use:   "explain [flags] message...",
	Short: "Show how a single message is tokenized and scored",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExplain,
}

func init() {
	addEngineFlags(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyEngineFlags(cmd, &e.cfg); err != nil {
		return err
	}

	analyzer, err := buildAnalyzer(e)
	if err != nil {
		return err
	}

	exp := analyzer.Explain(strings.Join(args, " "))
	printExplanation(cmd.OutOrStdout(), exp)
	return nil
}

func printExplanation(w io.Writer, exp chatmood.Explanation) {
	bold := color.New(color.Bold)

	fmt.Fprintf(w, "%s %s\n", bold.Sprint("tokens:"), strings.Join(exp.Tokens, " "))
	if len(exp.Evidence.Matches) == 0 {
		fmt.Fprintln(w, bold.Sprint("matches:"), "none")
	} else {
		fmt.Fprintln(w, bold.Sprint("matches:"))
		for _, m := range exp.Evidence.Matches {
			fmt.Fprintf(w, "  %-20s %-8s %s\n", m.Word, m.Source, m.Distribution)
		}
		fmt.Fprintf(w, "%s %s\n", bold.Sprint("products:"), exp.Evidence.Products)
	}

	fmt.Fprintf(w, "%s %s\n", bold.Sprint("label:"), labelString(exp.Label))
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("scores:"), exp.Scores)
	fmt.Fprintf(w, "%s %t\n", bold.Sprint("inferred:"), exp.Inferred)
}

func labelString(l chatmood.Label) string {
	switch l {
	case chatmood.Positive:
		return color.GreenString("1 (positive)")
	case chatmood.Neutral:
		return color.YellowString("0 (neutral)")
	case chatmood.Negative:
		return color.RedString("-1 (negative)")
	default:
		return "unscored"
	}
}
