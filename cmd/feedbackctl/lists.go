package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/feedbackdesk/feedback-backend/client"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/spf13/cobra"
)

func newListsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show or replace the individuals and services lists",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print both lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := g.client().GetLists(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lists)
		},
	}

	var file string
	set := &cobra.Command{
		Use:       "set individuals|services",
		Short:     "Replace a list with the entries of a YAML file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"individuals", "services"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := g.client()
			switch args[0] {
			case "individuals":
				var list []types.Individual
				if err := readYAMLFile(file, &list); err != nil {
					return err
				}
				saved, err := c.UpdateIndividuals(cmd.Context(), list)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d individual(s)\n", len(saved))
			default:
				var list []string
				if err := readYAMLFile(file, &list); err != nil {
					return err
				}
				saved, err := c.UpdateServices(cmd.Context(), list)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d service(s)\n", len(saved))
			}
			return nil
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", "YAML list, - for stdin")
	_ = set.MarkFlagRequired("file")

	cmd.AddCommand(get, set,
		newListEditCmd(g, client.ListAdd, "add individuals|services <value>", 2),
		newListEditCmd(g, client.ListUpdate, "update individuals|services <index> <value>", 3),
		newListEditCmd(g, client.ListDelete, "delete individuals|services <index>", 2),
	)
	return cmd
}

// newListEditCmd edits one entry of a list by its zero-based index, as shown
// by `lists get`. Individuals take their designation from --designation.
func newListEditCmd(g *globals, op client.ListOp, use string, nargs int) *cobra.Command {
	var designation string
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s one list entry", strings.ToUpper(string(op[:1]))+string(op[1:])),
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := 0
			value := ""
			switch op {
			case client.ListAdd:
				value = args[1]
			case client.ListUpdate, client.ListDelete:
				i, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("index must be a number, got %q", args[1])
				}
				index = i
				if op == client.ListUpdate {
					value = args[2]
				}
			}

			c := g.client()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "individuals":
				saved, err := c.EditIndividuals(cmd.Context(), client.ListEdit[types.Individual]{
					Op:    op,
					Index: index,
					Value: types.Individual{Name: value, Designation: designation},
				})
				if err != nil {
					return err
				}
				for i, ind := range saved {
					fmt.Fprintf(out, "%d\t%s\n", i, ind.Label())
				}
			case "services":
				saved, err := c.EditServices(cmd.Context(), client.ListEdit[string]{Op: op, Index: index, Value: value})
				if err != nil {
					return err
				}
				for i, svc := range saved {
					fmt.Fprintf(out, "%d\t%s\n", i, svc)
				}
			default:
				return fmt.Errorf("unknown list %q (want individuals or services)", args[0])
			}
			return nil
		},
	}
	if op != client.ListDelete {
		cmd.Flags().StringVar(&designation, "designation", "", "Designation of an individual")
	}
	return cmd
}

func newSettingsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage form defaults and lists together",
	}

	var file string
	saveAll := &cobra.Command{
		Use:   "save-all",
		Short: "Save individuals, services and form defaults in one go",
		Long: `Saves the three settings concurrently. Each save is independent: a failure
is reported for that part only and does not undo the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var bundle client.SettingsBundle
			if err := readYAMLFile(file, &bundle); err != nil {
				return err
			}

			result := g.client().SaveAllSettings(cmd.Context(), bundle)
			out := cmd.OutOrStdout()
			for _, o := range result.Outcomes {
				if o.OK() {
					fmt.Fprintf(out, "%-13s saved\n", o.Name)
				} else {
					fmt.Fprintf(out, "%-13s FAILED: %s\n", o.Name, describe(o.Err))
				}
			}
			if err := result.Err(); err != nil {
				return errors.New("settings were only partly saved")
			}
			return nil
		},
	}
	saveAll.Flags().StringVarP(&file, "file", "f", "", "Settings YAML with individuals, services and formDefaults")
	_ = saveAll.MarkFlagRequired("file")

	cmd.AddCommand(saveAll)
	return cmd
}
