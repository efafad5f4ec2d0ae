package cliotools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sznchanda/arcade-ai/dispatch"
	"github.com/sznchanda/arcade-ai/validation"
)

// BillingTools returns the time tracking and expense tool definitions.
func BillingTools() []dispatch.Tool {
	return []dispatch.Tool{
		clioTool("clio.create_time_entry",
			"Log billable hours on a matter. Hours round up to 0.1 increments.",
			createTimeEntry),
		clioTool("clio.update_time_entry",
			"Update an existing time entry.",
			updateTimeEntry),
		clioTool("clio.list_time_entries",
			"List time entries filtered by matter, user, or date range.",
			listTimeEntries),
		clioTool("clio.create_expense",
			"Record an expense against a matter with an exact decimal amount.",
			createExpense),
		clioTool("clio.list_expenses",
			"List expense entries filtered by matter, user, or date range.",
			listExpenses),
	}
}

func createTimeEntry(ctx context.Context, call *dispatch.Call) (any, error) {
	matterID, err := requireID(call.Args, "matter_id")
	if err != nil {
		return nil, err
	}
	workDate, err := validation.ParseDate("date", call.Args.String("date"))
	if err != nil {
		return nil, err
	}
	hours, err := validation.ParseHours("hours", call.Args.String("hours"))
	if err != nil {
		return nil, err
	}
	description, err := validation.RequireString("description", call.Args.String("description"))
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"type":        "TimeEntry",
		"matter_id":   matterID,
		"date":        workDate,
		"quantity":    validation.FormatHours(hours),
		"description": description,
	}
	if id, present, err := optionalID(call.Args, "activity_type_id"); err != nil {
		return nil, err
	} else if present {
		payload["activity_type_id"] = id
	}
	if call.Args.Has("rate") {
		rate, err := validation.ParseAmount("rate", call.Args.String("rate"))
		if err != nil {
			return nil, err
		}
		payload["price"] = validation.FormatAmount(rate)
	}

	res, err := call.Client.Post(ctx, "activities", map[string]any{"activity": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func updateTimeEntry(ctx context.Context, call *dispatch.Call) (any, error) {
	entryID, err := requireID(call.Args, "time_entry_id")
	if err != nil {
		return nil, err
	}

	payload := map[string]any{}
	if call.Args.Has("date") {
		workDate, err := validation.ParseDate("date", call.Args.String("date"))
		if err != nil {
			return nil, err
		}
		payload["date"] = workDate
	}
	if call.Args.Has("hours") {
		hours, err := validation.ParseHours("hours", call.Args.String("hours"))
		if err != nil {
			return nil, err
		}
		payload["quantity"] = validation.FormatHours(hours)
	}
	if call.Args.Has("description") {
		payload["description"] = call.Args.String("description")
	}
	if id, present, err := optionalID(call.Args, "activity_type_id"); err != nil {
		return nil, err
	} else if present {
		payload["activity_type_id"] = id
	}
	if call.Args.Has("rate") {
		rate, err := validation.ParseAmount("rate", call.Args.String("rate"))
		if err != nil {
			return nil, err
		}
		payload["price"] = validation.FormatAmount(rate)
	}
	if len(payload) == 0 {
		return nil, invalidArg("time_entry", "at least one field must be provided")
	}

	path := fmt.Sprintf("activities/%d", entryID)
	res, err := call.Client.Patch(ctx, path, map[string]any{"activity": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func listTimeEntries(ctx context.Context, call *dispatch.Call) (any, error) {
	return listActivities(ctx, call, "TimeEntry")
}

func listExpenses(ctx context.Context, call *dispatch.Call) (any, error) {
	return listActivities(ctx, call, "ExpenseEntry")
}

func listActivities(ctx context.Context, call *dispatch.Call, activityType string) (any, error) {
	limit, offset, err := listWindow(call.Args)
	if err != nil {
		return nil, err
	}

	params := windowQuery(limit, offset)
	params["type"] = activityType
	for _, argKey := range []string{"matter_id", "user_id"} {
		id, present, err := optionalID(call.Args, argKey)
		if err != nil {
			return nil, err
		}
		if present {
			params[argKey] = strconv.Itoa(id)
		}
	}
	for _, argKey := range []string{"date_from", "date_to"} {
		value, err := validation.ParseOptionalDate(argKey, call.Args.String(argKey))
		if err != nil {
			return nil, err
		}
		if value != "" {
			params[argKey] = value
		}
	}
	if billed, ok := call.Args.Bool("billed"); ok {
		params["billed"] = strconv.FormatBool(billed)
	}

	res, err := call.Client.Get(ctx, "activities", params)
	if err != nil {
		return nil, err
	}
	items, err := decodeData(res)
	if err != nil {
		return nil, err
	}
	return listResult(items, res), nil
}

func createExpense(ctx context.Context, call *dispatch.Call) (any, error) {
	matterID, err := requireID(call.Args, "matter_id")
	if err != nil {
		return nil, err
	}
	expenseDate, err := validation.ParseDate("date", call.Args.String("date"))
	if err != nil {
		return nil, err
	}
	amount, err := validation.ParseAmount("amount", call.Args.String("amount"))
	if err != nil {
		return nil, err
	}
	description, err := validation.RequireString("description", call.Args.String("description"))
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"type":        "ExpenseEntry",
		"matter_id":   matterID,
		"date":        expenseDate,
		"quantity":    1,
		"price":       validation.FormatAmount(amount),
		"description": description,
	}
	setIfPresent(payload, "vendor", call.Args.String("vendor"))
	setIfPresent(payload, "category", call.Args.String("category"))

	res, err := call.Client.Post(ctx, "activities", map[string]any{"activity": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}
