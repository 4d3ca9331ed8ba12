// Package cli implements the hostelctl administrative commands. Every
// command talks to a running hosteld instance over its HTTP API.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/model"
)

// NewRootCmd builds the hostelctl command tree.
func NewRootCmd() *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:   "hostelctl",
		Short: "Administrative CLI for the hostel seat allocation service",
		Long: `Hostelctl triggers seat allocation operations (approve, reject, dismiss,
withdraw, vacancy fill, reallocation) and inspects the allocation state of a
running hosteld instance.`,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the hosteld API")

	client := func() *Client { return NewClient(serverURL) }

	root.AddCommand(newApproveCmd(client))
	root.AddCommand(newRejectCmd(client))
	root.AddCommand(newDismissCmd(client))
	root.AddCommand(newWithdrawCmd(client))
	root.AddCommand(newFillCmd(client))
	root.AddCommand(newReallocateCmd(client))
	root.AddCommand(newAllocatedCmd(client))
	root.AddCommand(newWaitingCmd(client))

	return root
}

func newApproveCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <application-id>",
		Short: "Approve a pending application (allocate or waitlist)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var outcome alloc.ApproveOutcome
			if err := client().post("/api/applications/"+args[0]+"/approve", &outcome); err != nil {
				return err
			}
			if outcome.Allocated {
				color.Green("Applicant %d allocated to %s, Floor %d, Room %d (score %.2f)",
					outcome.ApplicantID, outcome.Room.BuildingName,
					outcome.Room.FloorNumber, outcome.Room.RoomNumber, outcome.Score)
			} else {
				color.Yellow("Applicant %d waitlisted at position %d (score %.2f)",
					outcome.ApplicantID, outcome.WaitingPosition, outcome.Score)
			}
			return nil
		},
	}
}

func newRejectCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <application-id>",
		Short: "Reject a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().post("/api/applications/"+args[0]+"/reject", nil); err != nil {
				return err
			}
			color.Red("Application %s rejected", args[0])
			return nil
		},
	}
}

func newDismissCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <applicant-id>",
		Short: "Dismiss an applicant's seat and auto-fill it from the waiting list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result alloc.VacateResult
			if err := client().post("/api/applicants/"+args[0]+"/dismiss", &result); err != nil {
				return err
			}
			printVacateResult(&result)
			return nil
		},
	}
}

func newWithdrawCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <applicant-id>",
		Short: "Withdraw an applicant's seat (auto-fill per server policy)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result alloc.VacateResult
			if err := client().post("/api/applicants/"+args[0]+"/withdraw", &result); err != nil {
				return err
			}
			printVacateResult(&result)
			return nil
		},
	}
}

func printVacateResult(result *alloc.VacateResult) {
	fmt.Printf("Seat vacated: applicant %d, %s Floor %d Room %d\n",
		result.ApplicantID, result.Room.BuildingName,
		result.Room.FloorNumber, result.Room.RoomNumber)
	if result.PromotedApplicantID != 0 {
		color.Green("Applicant %d promoted from the waiting list", result.PromotedApplicantID)
	} else if result.AutofillRequested {
		color.Yellow("No waiting applicant available, room left under capacity")
	}
}

func newFillCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "fill <room-id>",
		Short: "Promote the top waiting applicant into a specific room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result alloc.FillResult
			if err := client().post("/api/rooms/"+args[0]+"/fill", &result); err != nil {
				return err
			}
			if result.PromotedApplicantID != 0 {
				color.Green("Applicant %d promoted into room %s", result.PromotedApplicantID, args[0])
			} else {
				color.Yellow("No waiting applicants")
			}
			return nil
		},
	}
}

func newReallocateCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "reallocate",
		Short: "Run a full reallocation over occupants and waiting applicants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var run model.AllocationRun
			if err := client().post("/api/reallocations", &run); err != nil {
				return err
			}
			color.Green("Reallocation run %s complete: %d assigned, %d waitlisted",
				run.ID, run.Assigned, run.Waitlisted)
			return nil
		},
	}
}

func newAllocatedCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "allocated",
		Short: "List active seat allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seats []struct {
				Applicant model.Applicant `json:"applicant"`
				Room      model.Room      `json:"room"`
			}
			if err := client().get("/api/seats/allocated", &seats); err != nil {
				return err
			}
			if len(seats) == 0 {
				fmt.Println("No active allocations")
				return nil
			}
			for _, s := range seats {
				fmt.Printf("%-24s %-12s score %6.2f  %s, Floor %d, Room %d\n",
					s.Applicant.Name, s.Applicant.RollNo, s.Applicant.Score,
					s.Room.BuildingName, s.Room.FloorNumber, s.Room.RoomNumber)
			}
			return nil
		},
	}
}

func newWaitingCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "waiting",
		Short: "List the waiting list in rank order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []struct {
				model.WaitingEntry
				Applicant model.Applicant `json:"applicant"`
			}
			if err := client().get("/api/seats/waiting", &entries); err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Waiting list is empty")
				return nil
			}
			for i, e := range entries {
				fmt.Printf("%3d. %-24s %-12s score %6.2f  since %s\n",
					i+1, e.Applicant.Name, e.Applicant.RollNo, e.Score,
					e.AddedOn.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
