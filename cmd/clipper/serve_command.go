package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/api"
	"clipper/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			address := strings.TrimSpace(bind)
			if address == "" {
				address = cfg.Paths.APIBind
			}

			pipeline := ctx.pipeline()
			deps := api.Dependencies{
				Acquirer:    pipeline,
				Subtitles:   ctx.subtitleService(pipeline),
				Transformer: ctx.transformer(),
				Voice:       ctx.voiceService(),
				Health: func(reqCtx context.Context) []preflight.Result {
					return preflight.RunAll(reqCtx, cfg, ctx.toolGateway())
				},
			}
			if store, err := ctx.historyStore(); err == nil {
				deps.History = store
			}

			server := api.NewServer(deps, ctx.ensureLogger())
			out := cmd.OutOrStdout()
			return server.ListenAndServe(cmd.Context(), address, func(addr string) {
				fmt.Fprintf(out, "Listening on http://%s\n", addr)
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default: paths.api_bind)")
	return cmd
}
