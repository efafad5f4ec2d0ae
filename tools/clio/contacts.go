package cliotools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sznchanda/arcade-ai/dispatch"
	"github.com/sznchanda/arcade-ai/validation"
)

// ContactTools returns the contact management tool definitions.
func ContactTools() []dispatch.Tool {
	return []dispatch.Tool{
		clioTool("clio.search_contacts",
			"Search contacts by name, email, phone, or company.",
			searchContacts),
		clioTool("clio.get_contact",
			"Retrieve one contact by ID.",
			getContact),
		clioTool("clio.create_contact",
			"Create a person or company contact.",
			createContact),
		clioTool("clio.update_contact",
			"Update fields on an existing contact.",
			updateContact),
		clioTool("clio.delete_contact",
			"Delete a contact that has no matter relationships.",
			deleteContact),
	}
}

func searchContacts(ctx context.Context, call *dispatch.Call) (any, error) {
	query, err := validation.RequireString("query", call.Args.String("query"))
	if err != nil {
		return nil, err
	}
	limit, offset, err := listWindow(call.Args)
	if err != nil {
		return nil, err
	}

	params := windowQuery(limit, offset)
	params["query"] = query
	if raw := call.Args.String("contact_type"); raw != "" {
		contactType, err := validation.NormalizeContactType(raw)
		if err != nil {
			return nil, err
		}
		params["type"] = contactType
	}

	res, err := call.Client.Get(ctx, "contacts", params)
	if err != nil {
		return nil, err
	}
	items, err := decodeData(res)
	if err != nil {
		return nil, err
	}
	return listResult(items, res), nil
}

func getContact(ctx context.Context, call *dispatch.Call) (any, error) {
	contactID, err := requireID(call.Args, "contact_id")
	if err != nil {
		return nil, err
	}
	res, err := call.Client.Get(ctx, fmt.Sprintf("contacts/%d", contactID), nil)
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func createContact(ctx context.Context, call *dispatch.Call) (any, error) {
	contactType, err := validation.NormalizeContactType(call.Args.String("contact_type"))
	if err != nil {
		return nil, err
	}

	firstName := call.Args.String("first_name")
	lastName := call.Args.String("last_name")
	name := call.Args.String("name")
	if err := validation.ValidatePersonName(contactType, firstName, lastName, name); err != nil {
		return nil, err
	}

	payload := map[string]any{"type": contactType}
	setIfPresent(payload, "name", name)
	setIfPresent(payload, "first_name", firstName)
	setIfPresent(payload, "last_name", lastName)
	setIfPresent(payload, "company", call.Args.String("company"))
	setIfPresent(payload, "title", call.Args.String("title"))
	if raw := call.Args.String("email"); raw != "" {
		email, err := validation.ValidateEmail("email", raw)
		if err != nil {
			return nil, err
		}
		payload["primary_email_address"] = email
	}
	if raw := call.Args.String("phone"); raw != "" {
		phone, err := validation.ValidatePhone("phone", raw)
		if err != nil {
			return nil, err
		}
		payload["primary_phone_number"] = phone
	}

	res, err := call.Client.Post(ctx, "contacts", map[string]any{"contact": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func updateContact(ctx context.Context, call *dispatch.Call) (any, error) {
	contactID, err := requireID(call.Args, "contact_id")
	if err != nil {
		return nil, err
	}

	payload := map[string]any{}
	if call.Args.Has("contact_type") {
		contactType, err := validation.NormalizeContactType(call.Args.String("contact_type"))
		if err != nil {
			return nil, err
		}
		payload["type"] = contactType
	}
	for argKey, fieldKey := range map[string]string{
		"name":       "name",
		"first_name": "first_name",
		"last_name":  "last_name",
		"company":    "company",
		"title":      "title",
	} {
		if call.Args.Has(argKey) {
			payload[fieldKey] = call.Args.String(argKey)
		}
	}
	if call.Args.Has("email") {
		email, err := validation.ValidateEmail("email", call.Args.String("email"))
		if err != nil {
			return nil, err
		}
		payload["primary_email_address"] = email
	}
	if call.Args.Has("phone") {
		phone, err := validation.ValidatePhone("phone", call.Args.String("phone"))
		if err != nil {
			return nil, err
		}
		payload["primary_phone_number"] = phone
	}
	if len(payload) == 0 {
		return nil, invalidArg("contact", "at least one field must be provided")
	}

	path := fmt.Sprintf("contacts/%d", contactID)
	res, err := call.Client.Patch(ctx, path, map[string]any{"contact": payload})
	if err != nil {
		return nil, err
	}
	return decodeData(res)
}

func deleteContact(ctx context.Context, call *dispatch.Call) (any, error) {
	contactID, err := requireID(call.Args, "contact_id")
	if err != nil {
		return nil, err
	}

	// Contacts attached to matters stay deletable only through the UI.
	matters, err := call.Client.Get(ctx, "matters", map[string]string{
		"client_id": strconv.Itoa(contactID),
		"limit":     "1",
	})
	if err != nil {
		return nil, err
	}
	attached, err := decodeData(matters)
	if err != nil {
		return nil, err
	}
	if list, ok := attached.([]any); ok && len(list) > 0 {
		return nil, invalidArg("contact_id",
			"contact has matter relationships and cannot be deleted")
	}

	if _, err := call.Client.Delete(ctx, fmt.Sprintf("contacts/%d", contactID)); err != nil {
		return nil, err
	}
	return map[string]any{
		"deleted":    true,
		"contact_id": contactID,
	}, nil
}

func setIfPresent(payload map[string]any, key, value string) {
	if value != "" {
		payload[key] = value
	}
}
