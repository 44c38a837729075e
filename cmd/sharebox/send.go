package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sharebox-go/internal/countdown"
	"sharebox-go/internal/selection"
	"sharebox-go/internal/share"
)

func newSendCmd(a *app) *cobra.Command {
	var text string
	var watch bool
	cmd := &cobra.Command{
		Use:   "send [FILE...]",
		Short: "Upload files or text and print the share link and access code",
		Long: `send uploads the given files in one share. With --text the snippet is shared instead;
"--text -" reads it from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			submitter := share.NewSubmitter(a.client)

			var res *share.ShareResult
			var err error
			if cmd.Flags().Changed("text") {
				if len(args) > 0 {
					return errors.New("--text cannot be combined with files")
				}
				if text == "-" {
					b, rerr := io.ReadAll(cmd.InOrStdin())
					if rerr != nil {
						return fmt.Errorf("reading stdin: %w", rerr)
					}
					text = string(b)
				}
				res, err = submitter.SubmitText(ctx, text)
			} else {
				files, serr := selectFiles(a.cfg.Limits(), args)
				if serr != nil {
					return serr
				}
				res, err = submitter.SubmitFiles(ctx, files)
			}
			if err != nil {
				return errors.New(share.UserMessage(err))
			}

			printResult(cmd.OutOrStdout(), res)
			if watch {
				watchExpiry(cmd, res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", `Share text instead of files ("-" reads stdin)`)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep a live countdown until the share expires")
	return cmd
}

// selectFiles runs paths through the same checks the web front applies.
// Any rejected file aborts the send.
func selectFiles(limits selection.Limits, paths []string) ([]selection.SelectableFile, error) {
	incoming := make([]selection.SelectableFile, 0, len(paths))
	for _, p := range paths {
		f, err := selection.FromPath(p)
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, f)
	}

	state := selection.NewState(limits)
	res := state.Add(incoming)
	if err := res.Err(); err != nil {
		return nil, err
	}
	if state.Count() == 0 {
		return nil, errors.New(share.MsgEmptySelection)
	}
	return state.Files(), nil
}

func printResult(w io.Writer, res *share.ShareResult) {
	fmt.Fprintf(w, "Link:        %s\n", res.Link)
	fmt.Fprintf(w, "Access code: %s\n", spaced(res.AccessCode))
	fmt.Fprintf(w, "Expires in:  %s (%s)\n", countdown.Format(res.ExpiresIn), humanize.Time(time.Now().Add(res.ExpiresIn)))
}

func spaced(code string) string {
	return strings.Join(strings.Split(code, ""), " ")
}

// watchExpiry redraws the remaining time on stderr until expiry or interrupt.
func watchExpiry(cmd *cobra.Command, res *share.ShareResult) {
	out := cmd.ErrOrStderr()
	cd := res.Countdown()
	cd.Start(cmd.Context(), func(left time.Duration) {
		fmt.Fprintf(out, "\rExpires in %s ", countdown.Format(left))
	})
	if done := cd.Done(); done != nil {
		<-done
	}
	if cd.Expired() {
		fmt.Fprintln(out, "\rShare expired.    ")
		return
	}
	fmt.Fprintln(out)
}
