package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 1000
)

// orderable maps the camelCase sort fields a resource accepts to columns.
type orderable map[string]string

var (
	userOrder = orderable{
		"id":        "id",
		"email":     "email",
		"name":      "name",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	}
	eventOrder = orderable{
		"id":        "id",
		"message":   "message",
		"userId":    "user_id",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	}
	kvOrder = orderable{
		"id":        "id",
		"key":       "key",
		"value":     "value",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	}
)

// collectionFilters reads the shared list query parameters: paging by
// limit/offset or pageSize/currentPage, ordering, timestamp bounds and ids.
func collectionFilters(c *fiber.Ctx, order orderable) ([]repository.Filter, error) {
	details := map[string]string{}
	var filters []repository.Filter

	if raw := c.Query("ids"); raw != "" {
		var ids []any
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				details["ids"] = "must be a comma separated list of UUIDs"
				break
			}
			ids = append(ids, id)
		}
		filters = append(filters, repository.In{Column: "id", Values: ids})
	}

	for _, ts := range []struct{ column, before, after string }{
		{"created_at", "createdBefore", "createdAfter"},
		{"updated_at", "updatedBefore", "updatedAfter"},
	} {
		before := parseTime(c, ts.before, details)
		after := parseTime(c, ts.after, details)
		if before != nil || after != nil {
			filters = append(filters, repository.BeforeAfter{Column: ts.column, Before: before, After: after})
		}
	}

	if field := c.Query("orderBy"); field != "" {
		column, ok := order[field]
		if !ok {
			details["orderBy"] = "unknown field " + field
		}
		desc := false
		switch strings.ToLower(c.Query("sortOrder", "asc")) {
		case "asc":
		case "desc":
			desc = true
		default:
			details["sortOrder"] = "must be asc or desc"
		}
		filters = append(filters, repository.OrderBy{Column: column, Desc: desc})
	}

	if page, ok := pageFilter(c, details); ok {
		filters = append(filters, page)
	}

	if len(details) > 0 {
		return nil, apperr.Validation("Invalid query parameters", details)
	}
	return filters, nil
}

// pageFilter prefers limit/offset and falls back to pageSize/currentPage.
// Problems are recorded in details.
func pageFilter(c *fiber.Ctx, details map[string]string) (repository.LimitOffset, bool) {
	rangeMsg := "must be between 1 and " + strconv.Itoa(maxPageSize)

	if c.Query("limit") != "" || c.Query("offset") != "" {
		limit, err := queryInt(c, "limit", defaultPageSize)
		if err != nil || limit < 1 || limit > maxPageSize {
			details["limit"] = rangeMsg
			return repository.LimitOffset{}, false
		}
		offset, err := queryInt(c, "offset", 0)
		if err != nil || offset < 0 {
			details["offset"] = "must be zero or greater"
			return repository.LimitOffset{}, false
		}
		return repository.LimitOffset{Limit: limit, Offset: offset}, true
	}

	size, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil || size < 1 || size > maxPageSize {
		details["pageSize"] = rangeMsg
		return repository.LimitOffset{}, false
	}
	current, err := queryInt(c, "currentPage", 1)
	if err != nil || current < 1 {
		details["currentPage"] = "must be 1 or greater"
		return repository.LimitOffset{}, false
	}
	return repository.LimitOffset{Limit: size, Offset: size * (current - 1)}, true
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func parseTime(c *fiber.Ctx, name string, details map[string]string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		details[name] = "must be an RFC 3339 timestamp"
		return nil
	}
	return &t
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid input", map[string]string{name: "must be a UUID"})
	}
	return id, nil
}

// bind parses the body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.Validation("Invalid request body", nil)
	}
	return dto.Validate(req)
}
