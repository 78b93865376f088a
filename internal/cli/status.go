package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/lane/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	statusStyles = map[models.ItemStatus]lipgloss.Style{
		models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		models.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.StatusPlanned:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		models.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		models.StatusAborted:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Report one or all open work items (read-only)",
	Long: `Without an argument, list every work item grouped by status in lifecycle
order. With an id, show the full detail of that work item. Never mutates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ItemMgr == nil {
			return fmt.Errorf("work item manager not initialized")
		}

		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := ItemMgr.Get(id)
			if err != nil {
				return err
			}
			printItemDetail(item)
			return nil
		}

		items, err := ItemMgr.List()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No work items found.")
			return nil
		}

		order := []models.ItemStatus{
			models.StatusInProgress, models.StatusBlocked,
			models.StatusPlanned, models.StatusDone, models.StatusAborted,
		}
		grouped := make(map[models.ItemStatus][]*models.WorkItem)
		for _, item := range items {
			grouped[item.Status] = append(grouped[item.Status], item)
		}
		for _, status := range order {
			if len(grouped[status]) == 0 {
				continue
			}
			fmt.Println(headerStyle.Render(strings.ToUpper(string(status))))
			for _, item := range grouped[status] {
				line := fmt.Sprintf("  %3d  %-12s %s", item.ID, item.WorkType, item.Title)
				if item.GroupID != 0 {
					line += dimStyle.Render(fmt.Sprintf("  (group %d)", item.GroupID))
				}
				fmt.Println(styleFor(status).Render(line))
			}
			fmt.Println()
		}
		return nil
	},
}

func styleFor(status models.ItemStatus) lipgloss.Style {
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

func printItemDetail(item *models.WorkItem) {
	fmt.Printf("Work item %d: %s\n", item.ID, item.Title)
	fmt.Printf("  Status:   %s\n", styleFor(item.Status).Render(string(item.Status)))
	fmt.Printf("  Type:     %s\n", item.WorkType)
	if item.GroupID != 0 {
		fmt.Printf("  Group:    %d\n", item.GroupID)
	}
	fmt.Printf("  Document: %s\n", item.LocationPath)
	printTimestamp("Created", item.CreatedAt)
	printTimestamp("Started", item.StartedAt)
	printTimestamp("Completed", item.CompletedAt)
	printTimestamp("Aborted", item.AbortedAt)
	printTimestamp("Blocked", item.BlockedAt)
	if item.HoursSpent != nil {
		fmt.Printf("  Hours:    %.1f\n", *item.HoursSpent)
	}
	if item.BlockReason != "" {
		fmt.Printf("  Block reason: %s\n", item.BlockReason)
	}
	if item.AbortReason != "" {
		fmt.Printf("  Abort reason: %s\n", item.AbortReason)
	}
}

func printTimestamp(label string, t *time.Time) {
	if t == nil {
		return
	}
	fmt.Printf("  %-9s %s\n", label+":", t.Format(time.RFC3339))
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
