package main

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"jobfit/analyzer/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past assessments",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Pick a stored assessment and print it in full",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored assessments",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	entries := mgr.State().History
	if len(entries) == 0 {
		fmt.Println("No stored assessments.")
		return nil
	}

	for i, entry := range entries {
		a := entry.Assessment
		fmt.Printf("%2d. %s  %-11s %-10s %s\n",
			i+1,
			a.CreatedAt.Format("2006-01-02 15:04"),
			a.Confidence,
			a.Recommendation.Type,
			a.InputPreview,
		)
	}
	return nil
}

func runHistoryShow(_ *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	entries := mgr.State().History
	if len(entries) == 0 {
		fmt.Println("No stored assessments.")
		return nil
	}

	idx, err := selectEntry(entries)
	if err != nil {
		return err
	}

	state := mgr.LoadHistoryItem(entries[idx].Assessment.ID)
	if state.Current == nil {
		return fmt.Errorf("assessment not found")
	}

	printAssessment(state.Current)
	return nil
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	confirm := promptui.Select{
		Label: "Delete all stored assessments?",
		Items: []string{promptNo, promptYes},
	}
	_, choice, err := confirm.Run()
	if err != nil {
		return err
	}
	if choice != promptYes {
		return nil
	}

	mgr.ClearHistory()
	fmt.Println("History cleared.")
	return nil
}

func selectEntry(entries []models.HistoryEntry) (int, error) {
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		a := entry.Assessment
		labels = append(labels, fmt.Sprintf("%s  %s  %s",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Confidence, a.InputPreview))
	}

	prompt := promptui.Select{
		Label: "Assessment",
		Items: labels,
		Size:  len(labels),
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	return idx, nil
}
