package mcp

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cctakt/cctakt/internal/core"
	"github.com/cctakt/cctakt/internal/plan"
)

// tool is one entry of the "tools/list" response: its JSON-RPC wire shape
// mirrors the MCP tool-definition schema, not an internal Go type.
type tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var toolDefs = []tool{
	{
		Name:        "add_task",
		Description: "Add a new worker task to the current plan. Creates a new plan if none exists.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":               map[string]interface{}{"type": "string", "description": "Task ID (e.g. 'feat-login'). Omit to have cctakt generate one."},
				"branch":           map[string]interface{}{"type": "string", "description": "Git branch name for the worker (e.g. 'feat/login')"},
				"description":      map[string]interface{}{"type": "string", "description": "Task description for the worker, including completion criteria"},
				"plan_description": map[string]interface{}{"type": "string", "description": "Optional description for the plan, used only when creating a new one"},
			},
			"required": []string{"branch", "description"},
		},
	},
	{
		Name:        "list_tasks",
		Description: "List all tasks in the current plan with their status.",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "required": []string{}},
	},
	{
		Name:        "get_task",
		Description: "Get details of a specific task by ID.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{"type": "string", "description": "Task ID to look up"},
			},
			"required": []string{"id"},
		},
	},
	{
		Name:        "get_plan_status",
		Description: "Get overall plan status, including task counts by status.",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "required": []string{}},
	},
}

var toolHandlers = map[string]func(*plan.Store, map[string]interface{}) (string, error){
	"add_task":        toolAddTask,
	"list_tasks":      toolListTasks,
	"get_task":        toolGetTask,
	"get_plan_status": toolGetPlanStatus,
}

func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

func toolAddTask(store *plan.Store, args map[string]interface{}) (string, error) {
	id, hasID := stringArg(args, "id")
	if !hasID {
		id = "task-" + uuid.New().String()
	}
	branch, ok := stringArg(args, "branch")
	if !ok {
		return "", core.ErrValidation("MISSING_PARAM", "missing required parameter: branch")
	}
	description, ok := stringArg(args, "description")
	if !ok {
		return "", core.ErrValidation("MISSING_PARAM", "missing required parameter: description")
	}
	planDescription, _ := stringArg(args, "plan_description")

	p, err := store.Load()
	if err != nil {
		return "", err
	}
	if p == nil {
		p = &core.Plan{Version: core.PlanSchemaVersion, Description: planDescription}
	}

	if p.TaskByID(id) != nil {
		return "", core.ErrValidation("DUPLICATE_TASK_ID", fmt.Sprintf("task with id %q already exists", id))
	}

	p.Tasks = append(p.Tasks, *core.NewTask(id, core.CreateWorkerAction{
		Branch:          branch,
		TaskDescription: description,
	}))

	if err := store.Save(p); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Task %q added successfully.\n\nBranch: %s\nStatus: pending\n\nThe task will be picked up by cctakt automatically.",
		id, branch,
	), nil
}

func toolListTasks(store *plan.Store, _ map[string]interface{}) (string, error) {
	p, err := store.Load()
	if err != nil {
		return "", err
	}
	if p == nil {
		return "No active plan. Use add_task to create one.", nil
	}
	if len(p.Tasks) == 0 {
		return "No tasks in current plan.", nil
	}

	var b strings.Builder
	if p.Description != "" {
		fmt.Fprintf(&b, "Plan: %s\n\n", p.Description)
	}
	b.WriteString("Tasks:\n")
	for _, t := range p.Tasks {
		fmt.Fprintf(&b, "  [%s] %s\n", t.Status, t.ID)
		if cw, ok := t.Action.(core.CreateWorkerAction); ok {
			fmt.Fprintf(&b, "      Branch: %s\n", cw.Branch)
		}
	}
	return b.String(), nil
}

func toolGetTask(store *plan.Store, args map[string]interface{}) (string, error) {
	id, ok := stringArg(args, "id")
	if !ok {
		return "", core.ErrValidation("MISSING_PARAM", "missing required parameter: id")
	}

	p, err := store.Load()
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", core.ErrNotFound("plan", "")
	}
	t := p.TaskByID(id)
	if t == nil {
		return "", core.ErrNotFound("task", id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", t.ID)
	fmt.Fprintf(&b, "Status: %s\n", t.Status)
	if cw, ok := t.Action.(core.CreateWorkerAction); ok {
		fmt.Fprintf(&b, "Branch: %s\n", cw.Branch)
		fmt.Fprintf(&b, "\nDescription:\n%s\n", cw.TaskDescription)
	}
	if t.Result != nil {
		b.WriteString("\nResult:\n")
		if len(t.Result.Commits) > 0 {
			b.WriteString("  Commits:\n")
			for _, c := range t.Result.Commits {
				fmt.Fprintf(&b, "    - %s\n", c)
			}
		}
		if t.Result.PRURL != "" {
			fmt.Fprintf(&b, "  PR: %s\n", t.Result.PRURL)
		}
	}
	if t.Error != "" {
		fmt.Fprintf(&b, "\nError: %s\n", t.Error)
	}
	return b.String(), nil
}

func toolGetPlanStatus(store *plan.Store, _ map[string]interface{}) (string, error) {
	p, err := store.Load()
	if err != nil {
		return "", err
	}
	if p == nil {
		return "No active plan.", nil
	}

	var pending, running, completed, failed int
	for _, t := range p.Tasks {
		switch t.Status {
		case core.TaskStatusPending:
			pending++
		case core.TaskStatusRunning:
			running++
		case core.TaskStatusCompleted:
			completed++
		case core.TaskStatusFailed:
			failed++
		}
	}

	var b strings.Builder
	if p.Description != "" {
		fmt.Fprintf(&b, "Plan: %s\n\n", p.Description)
	}
	fmt.Fprintf(&b, "Total tasks: %d\n", len(p.Tasks))
	fmt.Fprintf(&b, "  Pending:   %d\n", pending)
	fmt.Fprintf(&b, "  Running:   %d\n", running)
	fmt.Fprintf(&b, "  Completed: %d\n", completed)
	fmt.Fprintf(&b, "  Failed:    %d\n", failed)
	if p.IsComplete() {
		b.WriteString("\nAll tasks completed.")
	}
	return b.String(), nil
}
