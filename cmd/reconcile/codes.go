package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/errors"
)

func codesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes [code]",
		Short: "List error codes or explain one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				t, ok := errors.Lookup(args[0])
				if !ok {
					return errors.New("X001").WithDetailf("unknown error code %q", args[0])
				}
				fmt.Fprintf(w, "%s  [%s]  %s\n", args[0], t.Category, t.Message)
				if t.Detail != "" {
					fmt.Fprintf(w, "\n  %s\n", t.Detail)
				}
				return nil
			}
			codes := errors.Codes()
			sort.Strings(codes)
			for _, code := range codes {
				t, _ := errors.Lookup(code)
				fmt.Fprintf(w, "%s  %-11s %s\n", code, t.Category, t.Message)
			}
			return nil
		},
	}
}
