package tools

import (
	"context"
	"fmt"

	"github.com/lumen-cms/toolgate/internal/content"
	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/schema"
	"golang.org/x/crypto/bcrypt"
)

const domainUsers = "users"

// User mutations never touch rendered output, so no cache category.
// Passwords are hashed before they reach the repository; the stored
// record carries password_hash only.
func registerUserTools(reg *dispatch.Registry, deps Deps) error {
	tools := []*dispatch.Tool{
		{
			Name:        "users-create",
			Description: "Create a user account",
			Domain:      domainUsers,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Unique username").
				RequiredString("email", "Email address for the account").
				String("name", "Display name").
				String("password", "Initial password; stored as a hash").
				StringArray("roles", "Role handles assigned to the user").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				data := map[string]any{"email": inv.Args.String("email")}
				if name := inv.Args.String("name"); name != "" {
					data["name"] = name
				}
				if roles := inv.Args.StringSlice("roles"); len(roles) > 0 {
					data["roles"] = roles
				}
				if password := inv.Args.String("password"); password != "" {
					hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
					if err != nil {
						return nil, fmt.Errorf("hash password: %w", err)
					}
					data["password_hash"] = string(hash)
				}
				entity, err := deps.Repo.Create(ctx, domainUsers, inv.Args.String("handle"), data)
				if err != nil {
					return nil, err
				}
				return map[string]any{"user": userPayload(entity)}, nil
			},
		},
		{
			Name:        "users-get",
			Description: "Fetch one user by username",
			Domain:      domainUsers,
			Action:      "view",
			Schema: schema.New().
				RequiredString("handle", "Username to look up").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entity, err := deps.Repo.Find(ctx, domainUsers, inv.Args.String("handle"))
				if err != nil {
					return nil, err
				}
				if entity == nil {
					return notFoundPayload("user"), nil
				}
				return map[string]any{"found": true, "user": userPayload(entity)}, nil
			},
		},
		{
			Name:        "users-list",
			Description: "List user accounts",
			Domain:      domainUsers,
			Action:      "view",
			Schema: schema.New().
				IntegerDefault("limit", "Maximum number of users to return", 50).
				String("prefix", "Return only usernames starting with this prefix").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				entities, err := deps.Repo.List(ctx, domainUsers, listFilter(inv.Args))
				if err != nil {
					return nil, err
				}
				items := make([]map[string]any, 0, len(entities))
				for _, e := range entities {
					items = append(items, userPayload(e))
				}
				return map[string]any{"users": items, "count": len(items)}, nil
			},
		},
		{
			Name:        "users-update",
			Description: "Update a user's profile fields",
			Domain:      domainUsers,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Username to update").
				OpenObject("changes", "Profile fields to merge into the user").
				Require("changes").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				changes := inv.Args.Map("changes")
				if raw, ok := changes["password"]; ok {
					password, _ := raw.(string)
					delete(changes, "password")
					if password != "" {
						hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
						if err != nil {
							return nil, fmt.Errorf("hash password: %w", err)
						}
						changes["password_hash"] = string(hash)
					}
				}
				entity, err := deps.Repo.Update(ctx, domainUsers, inv.Args.String("handle"), changes)
				if err != nil {
					return nil, err
				}
				return map[string]any{"user": userPayload(entity)}, nil
			},
		},
		{
			Name:        "users-delete",
			Description: "Delete a user account",
			Domain:      domainUsers,
			Action:      "manage",
			Schema: schema.New().
				RequiredString("handle", "Username to delete").
				MustBuild(),
			Handler: func(ctx context.Context, inv *dispatch.Invocation) (map[string]any, error) {
				handle := inv.Args.String("handle")
				if err := deps.Repo.Delete(ctx, domainUsers, handle); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "handle": handle}, nil
			},
		},
	}
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// userPayload strips the password hash from the response shape. The hash
// stays in storage; it has no business in a tool result.
func userPayload(e *content.Entity) map[string]any {
	payload := entityPayload(e)
	if _, ok := e.Data["password_hash"]; ok {
		clean := make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			if k == "password_hash" {
				continue
			}
			clean[k] = v
		}
		payload["data"] = clean
	}
	return payload
}
