package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"jobfit/analyzer/internal/models"
	"jobfit/analyzer/internal/session"
)

const (
	promptYes = "Yes"
	promptNo  = "No"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Submit a job description (from a file or stdin) for analysis",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Resubmit the last job description that failed",
	Args:  cobra.NoArgs,
	RunE:  runRetry,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(retryCmd)

	analyzeCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation on short inputs")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	autoApprove, _ := cmd.Flags().GetBool("yes")
	if warning := mgr.PreflightWarning(input); warning != "" && !autoApprove {
		fmt.Println(warning)
		confirm := promptui.Select{
			Label: "Submit anyway?",
			Items: []string{promptYes, promptNo},
		}
		_, choice, err := confirm.Run()
		if err != nil {
			return err
		}
		if choice != promptYes {
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state := mgr.Submit(ctx, input, printProgress)
	return printOutcome(state)
}

func runRetry(cmd *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	if mgr.State().LastFailedInput == "" {
		fmt.Println("Nothing to retry.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state := mgr.Retry(ctx, printProgress)
	return printOutcome(state)
}

func readInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func printProgress(ev models.StreamEvent) {
	fmt.Printf("[%3d%%] %-26s %s\n", ev.Percent, ev.Phase, ev.Message)
}

func printOutcome(state session.State) error {
	if state.Err != nil {
		return fmt.Errorf("%s: %s", state.Err.Code, state.Err.Message)
	}
	if state.Current == nil {
		return fmt.Errorf("no assessment produced")
	}

	printAssessment(state.Current)
	return nil
}

func printAssessment(a *models.MatchAssessment) {
	fmt.Println()
	fmt.Printf("Assessment %s (%s)\n", a.ID, a.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("Input:      %s\n", a.InputPreview)
	fmt.Printf("Confidence: %s\n", a.Confidence)

	if len(a.Alignments) > 0 {
		fmt.Println("\nAlignments:")
		for _, al := range a.Alignments {
			fmt.Printf("  + %s - %s\n", al.Title, al.Description)
			for _, ev := range al.Evidence {
				fmt.Printf("      [%s] %s: %s\n", ev.Type, ev.Title, ev.Excerpt)
			}
		}
	}

	if len(a.Gaps) > 0 {
		fmt.Println("\nGaps:")
		for _, g := range a.Gaps {
			fmt.Printf("  - %s (%s): %s\n", g.Title, g.Severity, g.Description)
		}
	}

	fmt.Println("\nRecommendation:")
	fmt.Printf("  %s - %s\n", strings.ToUpper(string(a.Recommendation.Type)), a.Recommendation.Summary)
	fmt.Printf("  %s\n", a.Recommendation.Rationale)
}
