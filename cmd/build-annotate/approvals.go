package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/approval"
	"github.com/spf13/cobra"
)

func init() {
	approvalsCmd := &cobra.Command{
		Use:   "approvals",
		Short: "Manage classpath approvals",
	}

	approvalsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending and approved classpath entries",
		RunE:  runApprovalsList,
	})
	approvalsCmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List classpath entries waiting for approval",
		RunE:  runApprovalsPending,
	})
	approvalsCmd.AddCommand(&cobra.Command{
		Use:   "approve HASH...",
		Short: "Approve pending classpath entries",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runApprovalsApprove,
	})
	approvalsCmd.AddCommand(&cobra.Command{
		Use:   "deny HASH...",
		Short: "Drop pending classpath entries",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runApprovalsDeny,
	})
	approvalsCmd.AddCommand(&cobra.Command{
		Use:   "hash FILE...",
		Short: "Print the approval hash of files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runApprovalsHash,
	})

	rootCmd.AddCommand(approvalsCmd)
}

func withApprovals(fn func(reg approval.Registry) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openApprovals(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func runApprovalsList(cmd *cobra.Command, args []string) error {
	return withApprovals(func(reg approval.Registry) error {
		pending, err := reg.ListPending()
		if err != nil {
			return err
		}
		approved, err := reg.ListApproved()
		if err != nil {
			return err
		}
		printRecords(os.Stdout, append(pending, approved...))
		return nil
	})
}

func runApprovalsPending(cmd *cobra.Command, args []string) error {
	return withApprovals(func(reg approval.Registry) error {
		pending, err := reg.ListPending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("No pending approvals")
			return nil
		}
		printRecords(os.Stdout, pending)
		return nil
	})
}

func runApprovalsApprove(cmd *cobra.Command, args []string) error {
	return withApprovals(func(reg approval.Registry) error {
		for _, hash := range args {
			if err := reg.Approve(hash); err != nil {
				return fmt.Errorf("%s: %w", hash, err)
			}
			fmt.Printf("Approved %s\n", hash)
		}
		return nil
	})
}

func runApprovalsDeny(cmd *cobra.Command, args []string) error {
	return withApprovals(func(reg approval.Registry) error {
		for _, hash := range args {
			if err := reg.Deny(hash); err != nil {
				return fmt.Errorf("%s: %w", hash, err)
			}
			fmt.Printf("Denied %s\n", hash)
		}
		return nil
	})
}

func runApprovalsHash(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		hash, err := approval.HashFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", hash, path)
	}
	return nil
}

func printRecords(out io.Writer, records []approval.Record) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HASH\tSTATE\tURL\tCREATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Hash, r.State, r.URL, r.CreatedAt.Format(time.DateTime))
	}
	w.Flush()
}
