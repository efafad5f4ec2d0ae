package cliotools

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sznchanda/arcade-ai/dispatch"
	"github.com/sznchanda/arcade-ai/validation"
)

// MatterTools returns the matter lifecycle tool definitions.
func MatterTools() []dispatch.Tool {
	return []dispatch.Tool{
		clioTool("clio.list_matters",
			"List matters filtered by status, client, or attorney.",
			listMatters),
		clioTool("clio.get_matter",
			"Retrieve one matter by ID.",
			getMatter),
		clioTool("clio.create_matter",
			"Open a new matter.",
			createMatter),
		clioTool("clio.update_matter",
			"Update fields on an existing matter.",
			updateMatter),
		clioTool("clio.close_matter",
			"Close a matter, recording its close date.",
			closeMatter),
	}
}

func listMatters(ctx context.Context, call *dispatch.Call) (any, error) {
	limit, offset, err := listWindow(call.Args)
	if err != nil {
		return nil, err
	}

	params := windowQuery(limit, offset)
	if raw := call.Args.String("status"); raw != "" {
		status, err := validation.NormalizeMatterStatus(raw)
		if err != nil {
			return nil, err
		}
		params["status"] = status
	}
	for argKey, paramKey := range map[string]string{
		"client_id":               "client_id",
		"responsible_attorney_id": "responsible_attorney_id",
		"practice_area_id":        "practice_area_id",
	} {
		id, present, err := optionalID(call.Args, argKey)
		if err != nil {
			return nil, err
		}
		if present {
			params[paramKey] = strconv.Itoa(id)
		}
	}

	res, err := call.Client.Get(ctx, "matters", params)
	if err != nil {
		return nil, err
	}
	items, err := decodeData(res)
	if err != nil {
		return nil, err
	}
	return listResult(items, res), nil
}

func getMatter(ctx context.Context, call *dispatch.Call) (any, error) {
	matterID, err := requireID(call.Args, "matter_id")
	if err != nil {
		return nil, err
	}
	res, err := call.Client.Get(ctx, fmt.Sprintf("matters/%d", matterID), nil)
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func createMatter(ctx context.Context, call *dispatch.Call) (any, error) {
	description, err := validation.RequireString("description", call.Args.String("description"))
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"description": description,
		"status":      "Open",
	}
	for _, argKey := range []string{"client_id", "responsible_attorney_id", "practice_area_id"} {
		id, present, err := optionalID(call.Args, argKey)
		if err != nil {
			return nil, err
		}
		if present {
			payload[argKey] = id
		}
	}
	openDate, err := validation.ParseOptionalDate("open_date", call.Args.String("open_date"))
	if err != nil {
		return nil, err
	}
	if openDate != "" {
		payload["open_date"] = openDate
	}
	if billable, ok := call.Args.Bool("billable"); ok {
		payload["billable"] = billable
	}
	setIfPresent(payload, "billing_method", call.Args.String("billing_method"))

	res, err := call.Client.Post(ctx, "matters", map[string]any{"matter": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func updateMatter(ctx context.Context, call *dispatch.Call) (any, error) {
	matterID, err := requireID(call.Args, "matter_id")
	if err != nil {
		return nil, err
	}

	payload := map[string]any{}
	status := ""
	if call.Args.Has("status") {
		status, err = validation.NormalizeMatterStatus(call.Args.String("status"))
		if err != nil {
			return nil, err
		}
		payload["status"] = status
	}
	if call.Args.Has("description") {
		payload["description"] = call.Args.String("description")
	}
	for _, argKey := range []string{"client_id", "responsible_attorney_id", "practice_area_id"} {
		id, present, err := optionalID(call.Args, argKey)
		if err != nil {
			return nil, err
		}
		if present {
			payload[argKey] = id
		}
	}
	closeDate, err := validation.ParseOptionalDate("close_date", call.Args.String("close_date"))
	if err != nil {
		return nil, err
	}
	if closeDate != "" {
		payload["close_date"] = closeDate
	}
	if err := validation.ValidateMatterClose(status, closeDate); err != nil {
		return nil, err
	}
	if billable, ok := call.Args.Bool("billable"); ok {
		payload["billable"] = billable
	}
	setIfPresent(payload, "billing_method", call.Args.String("billing_method"))
	if len(payload) == 0 {
		return nil, invalidArg("matter", "at least one field must be provided")
	}

	path := fmt.Sprintf("matters/%d", matterID)
	res, err := call.Client.Patch(ctx, path, map[string]any{"matter": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func closeMatter(ctx context.Context, call *dispatch.Call) (any, error) {
	matterID, err := requireID(call.Args, "matter_id")
	if err != nil {
		return nil, err
	}
	closeDate, err := validation.ParseOptionalDate("close_date", call.Args.String("close_date"))
	if err != nil {
		return nil, err
	}
	if closeDate == "" {
		closeDate = time.Now().UTC().Format("2006-01-02")
	}

	path := fmt.Sprintf("matters/%d", matterID)
	res, err := call.Client.Patch(ctx, path, map[string]any{"matter": map[string]any{
		"status":     "Closed",
		"close_date": closeDate,
	}})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}
