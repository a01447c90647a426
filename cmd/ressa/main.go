package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ressa",
		Short: "Organize, save, and schedule learning resources by topic",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(listCmd())
	root.AddCommand(addCmd())
	root.AddCommand(showCmd())
	root.AddCommand(renameCmd())
	root.AddCommand(rmCmd())
	root.AddCommand(resourceCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(unscheduleCmd())
	root.AddCommand(scheduledCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(serveCmd())

	return root
}

func listCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args)
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <topic-id>",
		Short: "Show a topic and its resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0])
		},
	}
}

func renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <topic-id> <new-title>",
		Short: "Rename a topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(args[0], args[1:])
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <topic-id>",
		Short: "Delete a topic and all its resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(args[0])
		},
	}
}

func resourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage a topic's resources",
	}

	var (
		imageURI string
		docURI   string
		docName  string
		docMime  string
		docSize  int64
	)

	add := &cobra.Command{
		Use:   "add <topic-id> [text]",
		Short: "Attach a resource to a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceAdd(args[0], args[1:], imageURI, docURI, docName, docMime, docSize)
		},
	}
	add.Flags().StringVar(&imageURI, "image", "", "attach an image by URI instead of text")
	add.Flags().StringVar(&docURI, "document", "", "attach a document by URI instead of text")
	add.Flags().StringVar(&docName, "name", "", "document display name")
	add.Flags().StringVar(&docMime, "mime", "application/octet-stream", "document MIME type")
	add.Flags().Int64Var(&docSize, "size", 0, "document size in bytes")

	edit := &cobra.Command{
		Use:   "edit <topic-id> <old-text> <new-text>",
		Short: "Replace a text resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceEdit(args[0], args[1], args[2])
		},
	}

	rm := &cobra.Command{
		Use:   "rm <topic-id> <text>",
		Short: "Remove every occurrence of a text resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceRm(args[0], args[1])
		},
	}

	cmd.AddCommand(add, edit, rm)
	return cmd
}

func scheduleCmd() *cobra.Command {
	var (
		on      string
		at      string
		noEvent bool
	)

	cmd := &cobra.Command{
		Use:   "schedule <topic-id>",
		Short: "Schedule a topic for review and add it to the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(args[0], on, at, noEvent)
		},
	}

	cmd.Flags().StringVar(&on, "on", "", "review date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&at, "time", "", "review time (optional)")
	cmd.Flags().BoolVar(&noEvent, "no-event", false, "skip creating a calendar event")
	return cmd
}

func unscheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule <topic-id>",
		Short: "Remove a topic from the review schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnschedule(args[0])
		},
	}
}

func scheduledCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduled(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search topics and resources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args)
		},
	}
}

func exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <topic-id>",
		Short: "Export a topic's resources to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format (json, pdf, docx)")
	return cmd
}

func suggestCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "suggest <topic-id>",
		Short: "Fetch suggested resources for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(args[0], save)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save suggestions to the topic as a bundle")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
