package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRequestsCommand(a *app) *cobra.Command {
	var studentID int

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List project requests and their statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}

			if studentID == 0 {
				info, err := a.client.CheckSession(cmd.Context())
				if err != nil {
					return err
				}
				studentID = info.User.UserID
			}

			requests, err := a.client.ProjectRequestStatus(cmd.Context(), studentID)
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				fmt.Println("No project requests")
				return nil
			}
			for _, req := range requests {
				fmt.Printf("#%d  %-40s  %s\n", req.RequestID, req.ProjectNameEng, req.Status)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&studentID, "student", 0, "student id (defaults to the signed-in user)")
	return cmd
}

func newProjectsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			projects, err := a.client.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("#%d  %s / %s\n", p.ProjectID, p.ProjectNameTh, p.ProjectNameEng)
			}
			return nil
		},
	}
}
