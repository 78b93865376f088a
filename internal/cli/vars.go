package cli

import (
	"github.com/valter-silva-au/lane/internal/core"
	"github.com/valter-silva-au/lane/pkg/models"
)

// Package-level dependencies injected by internal.NewApp before Execute
// runs.
var (
	// BasePath is the work tree root (the directory holding .lane/).
	BasePath string

	// ItemMgr drives work item transitions.
	ItemMgr core.WorkItemManager

	// GroupMgr drives group transitions and the completion check.
	GroupMgr core.GroupManager

	// DefaultWorkType is applied when allocate-work-item runs without an
	// explicit --type flag.
	DefaultWorkType = models.TypeFullstack
)
