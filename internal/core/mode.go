package core

// AppMode is the application's top-level mode. Only one overlay is active
// at a time; Normal mode has its own orthogonal sub-state (InputMode,
// FocusedPane).
type AppMode string

const (
	ModeNormal       AppMode = "normal"
	ModeIssuePicker  AppMode = "issue_picker"
	ModeReviewMerge  AppMode = "review_merge"
	ModeThemePicker  AppMode = "theme_picker"
	ModeConfirmBuild AppMode = "confirm_build"
	ModeTaskComplete AppMode = "task_complete"
)

// InputMode is Normal mode's key-routing sub-state.
type InputMode string

const (
	InputNavigation InputMode = "navigation"
	InputEditing    InputMode = "input"
)

// FocusedPane selects which half of the split view receives navigation
// and scroll keys.
type FocusedPane string

const (
	PaneLeft  FocusedPane = "left"
	PaneRight FocusedPane = "right"
)
