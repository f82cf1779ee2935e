package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "protoforge",
		Short:   "Protoforge — AI-assisted frontend prototype builder",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newGenerateCmd(),
		newChatCmd(),
		newConversationsCmd(),
		newAuditCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
