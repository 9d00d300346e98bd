package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/strata/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	var pretty bool
	var showType bool

	cmd := &cobra.Command{
		Use:   "cat-file <hash>",
		Short: "Show the content or type of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			o, err := r.Store.Read(object.Hash(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showType {
				fmt.Fprintln(out, o.Type())
				return nil
			}
			if !pretty {
				payload, err := object.MarshalPayload(o)
				if err != nil {
					return err
				}
				_, err = out.Write(payload)
				return err
			}

			switch v := o.(type) {
			case *object.Blob:
				_, err := out.Write(v.Data)
				return err
			case *object.Tree:
				for _, e := range v.Entries {
					fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, e.Mode.RefType(), e.Hash, e.Name)
				}
			case *object.Commit:
				fmt.Fprintf(out, "tree %s\n", v.Tree)
				for _, p := range v.Parents {
					fmt.Fprintf(out, "parent %s\n", p)
				}
				fmt.Fprintf(out, "author %s\n", v.Author)
				fmt.Fprintf(out, "committer %s\n", v.Committer)
				fmt.Fprintf(out, "\n%s", v.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object by kind")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object's kind instead of its content")

	return cmd
}
