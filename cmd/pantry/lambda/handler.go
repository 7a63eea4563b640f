package main

import (
	"context"
	"fmt"
	"log/slog"

	"pantryapp"
	"pantryapp/app"
	"pantryapp/pantry"
)

// Params is the invocation payload.
type Params struct {
	Action string `json:"action"`
	Name   string `json:"name"`
}

// Results carries the refreshed list and, for searches, the lookup result.
type Results struct {
	Items  []pantry.Item        `json:"items"`
	Result *pantry.SearchResult `json:"result,omitempty"`
}

func handle(ctx context.Context, a *app.App, params Params) (Results, error) {
	ctrl, err := a.NewController(ctx, pantryapp.NewStdoutActionLogger())
	if err != nil {
		return Results{}, err
	}

	var result *pantry.SearchResult
	switch params.Action {
	case "list", "":
	case "add":
		err = ctrl.Add(ctx, params.Name)
	case "remove":
		err = ctrl.Remove(ctx, params.Name)
	case "search":
		ctrl.SetSearchQuery(params.Name)
		res := ctrl.Search()
		result = &res
	default:
		return Results{}, fmt.Errorf("unknown action %q", params.Action)
	}
	if err != nil {
		slog.Error("RESULT: Error handling action", "action", params.Action, "error", err)
		return Results{}, err
	}

	return Results{Items: ctrl.Snapshot().Pantry, Result: result}, nil
}
