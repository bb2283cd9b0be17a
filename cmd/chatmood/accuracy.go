package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tsawler/chatmood"
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy [flags] dataset",
	Short: "Compare predicted labels with a ground-truth column",
	Long: `Accuracy reports the fraction of records whose predicted label equals the
ground-truth label. By default the predicted column of an already scored
file is used; with --rescore the messages are scored again first.`,
	Args: cobra.ExactArgs(1),
	RunE: runAccuracy,
}

func init() {
	accuracyCmd.Flags().String("actual", "sentiment", "ground-truth label column")
	accuracyCmd.Flags().String("predicted", chatmood.ColumnPrediction, "predicted label column")
	accuracyCmd.Flags().String("message-column", "", "column holding the message text")
	accuracyCmd.Flags().Bool("rescore", false, "score messages with the current lexicon before comparing")
	addEngineFlags(accuracyCmd)
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyEngineFlags(cmd, &e.cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	actual, _ := flags.GetString("actual")
	predicted, _ := flags.GetString("predicted")
	rescore, _ := flags.GetBool("rescore")
	if v, _ := flags.GetString("message-column"); v != "" {
		e.cfg.Input.MessageColumn = v
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	column := predicted
	if rescore {
		column = e.cfg.Input.MessageColumn
	}
	ds, err := chatmood.ReadDataset(f, chatmood.DelimiterFor(args[0]), column)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	if err := ds.RequireColumns(actual); err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	var report chatmood.AccuracyReport
	if rescore {
		analyzer, err := buildAnalyzer(e)
		if err != nil {
			return err
		}
		if _, err := analyzer.InferDataset(cmd.Context(), ds, column); err != nil {
			return fmt.Errorf("inference failed: %w", err)
		}
		report, err = chatmood.Accuracy(ds.Records, actual)
		if err != nil {
			return accuracyError(err)
		}
	} else {
		report, err = chatmood.AccuracyFromColumns(ds.Records, actual, predicted)
		if err != nil {
			return accuracyError(err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f (%d/%d)\n",
		color.New(color.Bold).Sprint("accuracy:"), report.Accuracy(), report.Correct, report.Total)
	return nil
}

func accuracyError(err error) error {
	if errors.Is(err, chatmood.ErrNoData) {
		return errors.New("dataset has no records")
	}
	return err
}
