package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"pantryapp"
	"pantryapp/app"
)

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		opts, err := app.OptionsFromEnv()
		if err != nil {
			return Results{}, err
		}
		// Lambda is stateless; the collection is the only shared state.
		if opts.Store.Driver == "file" {
			opts.Store.Driver = "s3"
		}
		opts.TracerName = pantryapp.TracerNameLambda

		a, err := app.New(ctx, opts)
		if err != nil {
			slog.Error("SETUP: Failed to build pantry", "error", err)
			return Results{}, err
		}
		defer a.Close()

		return handle(ctx, a, params)
	}

	lambda.Start(fn)
}
