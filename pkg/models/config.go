package models

import "time"

// Config holds engine settings read from .lane/config.yaml via Viper.
type Config struct {
	// WorkDir is the directory (relative to the work tree root) under
	// which the status directories live.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`

	// DefaultWorkType is used when allocate-work-item is invoked without
	// an explicit --type flag.
	DefaultWorkType WorkType `yaml:"default_work_type" mapstructure:"default_work_type"`

	// TagPrefix is prepended to the work item ID when publishing a
	// completion tag (e.g. "item" -> item-3-add-caching).
	TagPrefix string `yaml:"tag_prefix" mapstructure:"tag_prefix"`

	// Remote is the VCS remote that completion tags are pushed to.
	Remote string `yaml:"remote" mapstructure:"remote"`

	// PushTags controls whether completion tags are pushed after local
	// creation. Local tagging always happens.
	PushTags bool `yaml:"push_tags" mapstructure:"push_tags"`

	// GitTimeout bounds every VCS subprocess invocation.
	GitTimeout time.Duration `yaml:"git_timeout" mapstructure:"git_timeout"`

	// AdvisoryLock guards the registry read-modify-write window with a
	// file lock. Disable only for single-operator use.
	AdvisoryLock bool `yaml:"advisory_lock" mapstructure:"advisory_lock"`
}
