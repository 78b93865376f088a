package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/lane/internal/core"
	"github.com/valter-silva-au/lane/pkg/models"
)

var (
	allocateItemGroupFlag int
	allocateItemTypeFlag  string
)

var allocateWorkItemCmd = &cobra.Command{
	Use:   "allocate-work-item <title>",
	Short: "Allocate a new work item",
	Long: `Allocate the next work item identifier, write the initial document into
the planned location, and register the item. Use --group to create the
item inside an existing group and --type to set the work type.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ItemMgr == nil {
			return fmt.Errorf("work item manager not initialized")
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		workType := DefaultWorkType
		if cmd.Flags().Changed("type") {
			workType = models.WorkType(allocateItemTypeFlag)
		}
		item, err := ItemMgr.Allocate(args[0], allocateItemGroupFlag, workType, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Allocated work item %d\n", item.ID)
		fmt.Printf("  Title:    %s\n", item.Title)
		fmt.Printf("  Type:     %s\n", item.WorkType)
		if item.GroupID != 0 {
			fmt.Printf("  Group:    %d\n", item.GroupID)
		}
		fmt.Printf("  Document: %s\n", item.LocationPath)
		return nil
	},
}

var startWorkItemCmd = &cobra.Command{
	Use:   "start-work-item <id>",
	Short: "Start a planned work item",
	Long: `Transition a planned work item to in_progress, stamping startedAt and
relocating its document into the active-work location. An item that
belongs to a group may only start once the group itself has started.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		item, err := ItemMgr.Start(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Started work item %d: %s\n", item.ID, item.Title)
		fmt.Printf("  Document: %s\n", item.LocationPath)
		return nil
	},
}

var blockWorkItemCmd = &cobra.Command{
	Use:   "block-work-item <id> <reason>",
	Short: "Mark an in-progress work item as blocked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		item, err := ItemMgr.Block(id, args[1], dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Blocked work item %d: %s\n", item.ID, item.BlockReason)
		return nil
	},
}

var resumeWorkItemCmd = &cobra.Command{
	Use:   "resume-work-item <id>",
	Short: "Resume a blocked work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		item, err := ItemMgr.Resume(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Resumed work item %d: %s\n", item.ID, item.Title)
		return nil
	},
}

var completeWorkItemCmd = &cobra.Command{
	Use:   "complete-work-item <id>",
	Short: "Complete an in-progress work item",
	Long: `Transition an in-progress work item to done. The document must contain
the retrospective section. The document is relocated with the done suffix,
hours are computed from startedAt to completedAt, and an annotated tag is
created and pushed. A push failure leaves the local tag in place and exits
with code 3.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		result, err := ItemMgr.Complete(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}

		item := result.Item
		fmt.Printf("Completed work item %d: %s\n", item.ID, item.Title)
		if item.HoursSpent != nil {
			fmt.Printf("  Hours:    %.1f\n", *item.HoursSpent)
		}
		fmt.Printf("  Document: %s\n", item.LocationPath)
		if result.Publish != nil {
			fmt.Printf("  Tag:      %s", result.Publish.Tag)
			if result.Publish.Pushed {
				fmt.Printf(" (pushed)")
			}
			fmt.Println()
		}
		if result.GroupCheck != nil && result.GroupCheck.Complete {
			fmt.Printf("Group %d is ready: run `complete-group %d`\n", item.GroupID, item.GroupID)
		}
		if result.PublishErr != nil {
			return result.PublishErr
		}
		return nil
	},
}

var abortWorkItemCmd = &cobra.Command{
	Use:   "abort-work-item <id> <reason>",
	Short: "Abort a work item from any non-terminal state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		item, err := ItemMgr.Abort(id, args[1], dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Aborted work item %d: %s\n", item.ID, item.AbortReason)
		fmt.Printf("  Document: %s\n", item.LocationPath)
		return nil
	},
}

var recoverWorkItemCmd = &cobra.Command{
	Use:   "recover-work-item <id>",
	Short: "Move a misplaced work item document back to its canonical location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		item, err := ItemMgr.Recover(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Work item %d is at %s\n", item.ID, item.LocationPath)
		return nil
	},
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Reason: fmt.Sprintf("invalid id %q: expected a positive integer", arg)}
	}
	return id, nil
}

func init() {
	allocateWorkItemCmd.Flags().IntVar(&allocateItemGroupFlag, "group", 0, "group the item belongs to")
	allocateWorkItemCmd.Flags().StringVar(&allocateItemTypeFlag, "type", string(models.TypeFullstack), "work type")

	for _, cmd := range []*cobra.Command{
		allocateWorkItemCmd, startWorkItemCmd, blockWorkItemCmd,
		resumeWorkItemCmd, completeWorkItemCmd, abortWorkItemCmd,
		recoverWorkItemCmd,
	} {
		cmd.Flags().Bool("dry-run", false, "preview the transition without committing it")
		rootCmd.AddCommand(cmd)
	}
}
