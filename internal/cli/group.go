package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var allocateGroupCmd = &cobra.Command{
	Use:   "allocate-group <title>",
	Short: "Allocate a new group",
	Long: `Allocate the next group identifier and create the group folder with its
_group.md document in the planned location.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GroupMgr == nil {
			return fmt.Errorf("group manager not initialized")
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		group, err := GroupMgr.Allocate(args[0], dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Allocated group %d\n", group.ID)
		fmt.Printf("  Title:  %s\n", group.Title)
		fmt.Printf("  Folder: %s\n", group.LocationPath)
		return nil
	},
}

var startGroupCmd = &cobra.Command{
	Use:   "start-group <id>",
	Short: "Start a planned group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		group, err := GroupMgr.Start(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Started group %d: %s\n", group.ID, group.Title)
		fmt.Printf("  Folder: %s\n", group.LocationPath)
		return nil
	},
}

var checkCompletionJSONFlag bool

var checkGroupCompletionCmd = &cobra.Command{
	Use:   "check-group-completion <id>",
	Short: "Report whether every group member has finished (read-only)",
	Long: `Inspect all work items belonging to a group and report whether the group
may transition to done. This never mutates state and exits 0 whether or
not the group is complete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		check, err := GroupMgr.CheckCompletion(id)
		if err != nil {
			return err
		}

		if checkCompletionJSONFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"group":     check.GroupID,
				"complete":  check.Complete,
				"done":      check.Done,
				"aborted":   check.Aborted,
				"remaining": check.Remaining,
			})
		}

		total := check.Done + check.Aborted + len(check.Remaining)
		if check.Complete {
			fmt.Printf("Group %d is complete\n", id)
		} else {
			fmt.Printf("Group %d is not complete yet\n", id)
		}
		fmt.Printf("  Total:   %d\n", total)
		fmt.Printf("  Done:    %d\n", check.Done)
		fmt.Printf("  Aborted: %d\n", check.Aborted)
		if len(check.Remaining) > 0 {
			fmt.Printf("  Open:    %v\n", check.Remaining)
		} else {
			fmt.Printf("\nRun: lane complete-group %d\n", id)
		}
		return nil
	},
}

var completeGroupCmd = &cobra.Command{
	Use:   "complete-group <id>",
	Short: "Complete a group whose members have all finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		group, err := GroupMgr.Complete(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Completed group %d: %s\n", group.ID, group.Title)
		if group.TotalHours != nil {
			fmt.Printf("  Total hours: %.1f\n", *group.TotalHours)
		}
		fmt.Printf("  Folder: %s\n", group.LocationPath)
		return nil
	},
}

var archiveGroupCmd = &cobra.Command{
	Use:   "archive-group <id>",
	Short: "Archive a completed group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		group, err := GroupMgr.Archive(id, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Archived group %d: %s\n", group.ID, group.Title)
		fmt.Printf("  Folder: %s\n", group.LocationPath)
		return nil
	},
}

var groupAddWorkItemCmd = &cobra.Command{
	Use:   "group-add-work-item <itemId> <groupId>",
	Short: "Reassign a planned standalone work item into a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0])
		if err != nil {
			return err
		}
		groupID, err := parseID(args[1])
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		item, err := GroupMgr.AddWorkItem(itemID, groupID, dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("Added work item %d to group %d\n", item.ID, item.GroupID)
		fmt.Printf("  Document: %s\n", item.LocationPath)
		return nil
	},
}

var listGroupsCmd = &cobra.Command{
	Use:   "list-groups",
	Short: "List all groups with their member progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := GroupMgr.List()
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No groups found.")
			return nil
		}
		for _, group := range groups {
			check, err := GroupMgr.CheckCompletion(group.ID)
			if err != nil {
				return err
			}
			total := len(group.MemberIDs)
			percent := 0
			if total > 0 {
				percent = check.Done * 100 / total
			}
			fmt.Printf("Group %d: %s [%s] %d/%d done (%d%%)\n",
				group.ID, group.Title, group.Status, check.Done, total, percent)
		}
		return nil
	},
}

func init() {
	checkGroupCompletionCmd.Flags().BoolVar(&checkCompletionJSONFlag, "json", false, "emit the report as JSON")

	for _, cmd := range []*cobra.Command{
		allocateGroupCmd, startGroupCmd, completeGroupCmd,
		archiveGroupCmd, groupAddWorkItemCmd,
	} {
		cmd.Flags().Bool("dry-run", false, "preview the transition without committing it")
	}

	rootCmd.AddCommand(
		allocateGroupCmd, startGroupCmd, checkGroupCompletionCmd,
		completeGroupCmd, archiveGroupCmd, groupAddWorkItemCmd, listGroupsCmd,
	)
}
