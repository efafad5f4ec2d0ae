package cliotools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sznchanda/arcade-ai/client"
	"github.com/sznchanda/arcade-ai/dispatch"
	"github.com/sznchanda/arcade-ai/providers/clio"
)

const (
	defaultListLimit = 50
	maxListLimit     = clio.MaxPageSize
)

// Tools returns every Clio tool definition for dispatcher registration.
func Tools() []dispatch.Tool {
	var tools []dispatch.Tool
	tools = append(tools, ContactTools()...)
	tools = append(tools, MatterTools()...)
	tools = append(tools, BillingTools()...)
	return tools
}

func clioTool(name, description string, handler dispatch.Handler) dispatch.Tool {
	return dispatch.Tool{
		Name:        name,
		ProviderID:  clio.ProviderID,
		Description: description,
		Handler:     handler,
	}
}

// decodeData re-decodes the envelope data with numbers kept as
// json.Number so amounts keep their exact digits end to end.
func decodeData(res *client.Response) (any, error) {
	if res == nil || len(res.Data) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(res.Data))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "clio: decode response data")
	}
	return out, nil
}

func listResult(items any, res *client.Response) map[string]any {
	out := map[string]any{"items": items}
	if items == nil {
		out["items"] = []any{}
	}
	if res != nil && res.Meta != nil && res.Meta.Paging != nil {
		paging := map[string]any{}
		if res.Meta.Paging.Next != "" {
			paging["next"] = res.Meta.Paging.Next
		}
		if res.Meta.Paging.Previous != "" {
			paging["previous"] = res.Meta.Paging.Previous
		}
		if len(paging) > 0 {
			out["paging"] = paging
		}
	}
	return out
}

func listWindow(args dispatch.Args) (limit, offset int, err error) {
	limit = defaultListLimit
	if raw, ok := args.Int("limit"); ok {
		limit = raw
	} else if args.Has("limit") {
		return 0, 0, invalidArg("limit", "limit must be an integer")
	}
	if limit < 1 || limit > maxListLimit {
		return 0, 0, invalidArg("limit", fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
	}

	if raw, ok := args.Int("offset"); ok {
		offset = raw
	} else if args.Has("offset") {
		return 0, 0, invalidArg("offset", "offset must be an integer")
	}
	if offset < 0 {
		return 0, 0, invalidArg("offset", "offset must not be negative")
	}
	return limit, offset, nil
}

func requireID(args dispatch.Args, key string) (int, error) {
	id, ok := args.Int(key)
	if !ok || id <= 0 {
		return 0, invalidArg(key, fmt.Sprintf("%s must be a positive integer", key))
	}
	return id, nil
}

func optionalID(args dispatch.Args, key string) (int, bool, error) {
	if !args.Has(key) {
		return 0, false, nil
	}
	id, ok := args.Int(key)
	if !ok || id <= 0 {
		return 0, false, invalidArg(key, fmt.Sprintf("%s must be a positive integer", key))
	}
	return id, true, nil
}

func invalidArg(field, message string) error {
	return goerrors.NewValidation("clio: invalid argument",
		goerrors.FieldError{Field: field, Message: message})
}

func windowQuery(limit, offset int) map[string]string {
	query := map[string]string{"limit": strconv.Itoa(limit)}
	if offset > 0 {
		query["offset"] = strconv.Itoa(offset)
	}
	return query
}
